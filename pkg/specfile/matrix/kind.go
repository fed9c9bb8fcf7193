package matrix

import "slices"

// Kind names one of the fourteen distribution kinds.
type Kind string

// Enumerable kinds.
const (
	KindValues    Kind = "values"
	KindPValues   Kind = "pvalues"
	KindRange     Kind = "range"
	KindLinspace  Kind = "linspace"
	KindLogspace  Kind = "logspace"
	KindGeomspace Kind = "geomspace"
)

// Continuous kinds.
const (
	KindUniform     Kind = "uniform"
	KindQUniform    Kind = "quniform"
	KindLogUniform  Kind = "loguniform"
	KindQLogUniform Kind = "qloguniform"
	KindNormal      Kind = "normal"
	KindQNormal     Kind = "qnormal"
	KindLogNormal   Kind = "lognormal"
	KindQLogNormal  Kind = "qlognormal"
)

var allKinds = []Kind{
	KindValues, KindPValues, KindRange, KindLinspace, KindLogspace, KindGeomspace,
	KindUniform, KindQUniform, KindLogUniform, KindQLogUniform,
	KindNormal, KindQNormal, KindLogNormal, KindQLogNormal,
}

// Kinds returns every distribution kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// KindNames returns the kinds as strings, for suggestions.
func KindNames() []string {
	out := make([]string, len(allKinds))
	for i, k := range allKinds {
		out[i] = string(k)
	}
	return out
}

// IsValid reports whether k is one of the fourteen kinds.
func (k Kind) IsValid() bool {
	return slices.Contains(allKinds, k)
}

// IsEnumerable reports whether the kind has a finite set of values.
func (k Kind) IsEnumerable() bool {
	switch k {
	case KindValues, KindPValues, KindRange, KindLinspace, KindLogspace, KindGeomspace:
		return true
	}
	return false
}

// IsQuantized reports whether draws are rounded to a multiple of q.
func (k Kind) IsQuantized() bool {
	switch k {
	case KindQUniform, KindQLogUniform, KindQNormal, KindQLogNormal:
		return true
	}
	return false
}
