package schema

import "slices"

// Kind is the specification kind declared by the `kind` section.
type Kind string

const (
	KindExperiment Kind = "experiment"
	KindGroup      Kind = "group"
	KindJob        Kind = "job"
	KindPlugin     Kind = "plugin"
)

// Kinds returns the supported kinds.
func Kinds() []Kind {
	return []Kind{KindExperiment, KindGroup, KindJob, KindPlugin}
}

// KindNames returns the supported kind names.
func KindNames() []string {
	kinds := Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// IsValid reports whether k is a supported kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindExperiment, KindGroup, KindJob, KindPlugin:
		return true
	}
	return false
}

// Layout lists the sections a kind must and may carry.
type Layout struct {
	Kind     Kind
	Required []Section
	Allowed  []Section
}

// Requires reports whether s is required by the layout.
func (l Layout) Requires(s Section) bool {
	return slices.Contains(l.Required, s)
}

// Allows reports whether s may appear in a document of this layout.
func (l Layout) Allows(s Section) bool {
	return slices.Contains(l.Allowed, s)
}

// AllowedNames returns the allowed section names.
func (l Layout) AllowedNames() []string {
	return names(l.Allowed)
}

var layouts = map[Kind]Layout{
	KindExperiment: {
		Kind:     KindExperiment,
		Required: []Section{SectionVersion, SectionProject, SectionKind},
		Allowed:  allSections,
	},
	KindGroup: {
		Kind:     KindGroup,
		Required: []Section{SectionVersion, SectionProject, SectionKind, SectionSettings},
		Allowed:  allSections,
	},
	KindJob: {
		Kind:     KindJob,
		Required: []Section{SectionVersion, SectionProject, SectionKind, SectionRun},
		Allowed: []Section{
			SectionVersion, SectionProject, SectionKind, SectionEnvironment,
			SectionDeclarations, SectionSettings, SectionRun,
		},
	},
	KindPlugin: {
		Kind:     KindPlugin,
		Required: []Section{SectionVersion, SectionProject, SectionKind, SectionRun},
		Allowed: []Section{
			SectionVersion, SectionProject, SectionKind, SectionEnvironment,
			SectionSettings, SectionRun,
		},
	},
}

// LayoutFor returns the section layout of kind.
func LayoutFor(kind Kind) (Layout, bool) {
	l, ok := layouts[kind]
	return l, ok
}
