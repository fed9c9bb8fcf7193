package specification

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/matrix"
	"github.com/orbit-ml/specfile/pkg/specfile/resolver"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
)

// ready fails with a not-ready error unless s reached the validated state.
func (s *Specification) ready(what string) error {
	if s == nil || s.state != StateValidated {
		state := StateLoaded
		if s != nil {
			state = s.state
		}
		return specErrors.New(specErrors.ErrorTypeNotReady, "",
			"%s is not available in state %s", what, state)
	}
	return nil
}

// State returns the pipeline state.
func (s *Specification) State() State {
	if s == nil {
		return StateLoaded
	}
	return s.state
}

// Descriptor returns the descriptor the specification was built with.
func (s *Specification) Descriptor() Descriptor {
	return s.descriptor
}

// Kind returns the declared kind.
func (s *Specification) Kind() (schema.Kind, error) {
	if err := s.ready("kind"); err != nil {
		return "", err
	}
	return s.header.Kind, nil
}

// Header returns the decoded version, kind and project.
func (s *Specification) Header() (*schema.Header, error) {
	if err := s.ready("header"); err != nil {
		return nil, err
	}
	return s.header, nil
}

// Project returns the decoded project section.
func (s *Specification) Project() (*schema.Project, error) {
	if err := s.ready("project"); err != nil {
		return nil, err
	}
	return s.header.Project, nil
}

// Version returns the declared specification version.
func (s *Specification) Version() (float64, error) {
	if err := s.ready("version"); err != nil {
		return 0, err
	}
	return s.header.Version, nil
}

// Settings returns the decoded settings. Absent settings decode to defaults.
func (s *Specification) Settings() (*schema.Settings, error) {
	if err := s.ready("settings"); err != nil {
		return nil, err
	}
	return s.settings, nil
}

// Declarations returns the resolved declarations of the document.
func (s *Specification) Declarations() (*resolver.Declarations, error) {
	if err := s.ready("declarations"); err != nil {
		return nil, err
	}
	return s.declarations, nil
}

// Document returns a copy of the resolved, directive-free document.
func (s *Specification) Document() (*ast.Node, error) {
	if err := s.ready("document"); err != nil {
		return nil, err
	}
	return s.document.Clone(), nil
}

// Section returns a copy of one resolved section, or nil when absent.
func (s *Specification) Section(section schema.Section) (*ast.Node, error) {
	if err := s.ready("section " + string(section)); err != nil {
		return nil, err
	}
	node, ok := s.document.Get(string(section))
	if !ok {
		return nil, nil
	}
	return node.Clone(), nil
}

// Matrix returns the search space of a group. It fails with a
// configuration error when no matrix is declared.
func (s *Specification) Matrix() (*matrix.SearchSpace, error) {
	if err := s.ready("matrix"); err != nil {
		return nil, err
	}
	if !s.settings.HasMatrix() {
		return nil, specErrors.New(specErrors.ErrorTypeConfiguration, "settings.matrix",
			"no matrix is declared for this %s", s.descriptor.Kind())
	}
	return s.settings.Matrix, nil
}

// Raw returns a copy of the merged document the specification was built
// from, before resolution.
func (s *Specification) Raw() (*ast.Node, error) {
	if err := s.ready("raw document"); err != nil {
		return nil, err
	}
	return s.raw.Clone(), nil
}

// Fingerprint returns a hash of the merged raw document. Equal documents
// have equal fingerprints.
func (s *Specification) Fingerprint() (uint64, error) {
	if err := s.ready("fingerprint"); err != nil {
		return 0, err
	}
	return s.fingerprint, nil
}
