package schema

import "slices"

// Section is a top-level key of a specification document.
type Section string

const (
	SectionVersion      Section = "version"
	SectionProject      Section = "project"
	SectionKind         Section = "kind"
	SectionEnvironment  Section = "environment"
	SectionDeclarations Section = "declarations"
	SectionSettings     Section = "settings"
	SectionRun          Section = "run"
	SectionModel        Section = "model"
	SectionTrain        Section = "train"
	SectionEval         Section = "eval"
)

// allSections lists every section in canonical document order.
var allSections = []Section{
	SectionVersion,
	SectionProject,
	SectionKind,
	SectionEnvironment,
	SectionDeclarations,
	SectionSettings,
	SectionRun,
	SectionModel,
	SectionTrain,
	SectionEval,
}

// HeaderSections are validated and resolved before the rest of the document.
var HeaderSections = []Section{SectionVersion, SectionProject, SectionKind, SectionSettings}

// Sections returns every known section in canonical order.
func Sections() []Section {
	out := make([]Section, len(allSections))
	copy(out, allSections)
	return out
}

// SectionNames returns the names of every known section.
func SectionNames() []string {
	return names(allSections)
}

// IsSection reports whether name is a known section.
func IsSection(name string) bool {
	return slices.Contains(allSections, Section(name))
}

// IsHeader reports whether the section belongs to the header.
func (s Section) IsHeader() bool {
	return slices.Contains(HeaderSections, s)
}

func names(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = string(s)
	}
	return out
}
