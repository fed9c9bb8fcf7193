package matrix

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// weightTolerance is how far pvalues weights may sum from 1 before they
// are re-normalized with a warning.
const weightTolerance = 1e-9

// Distribution is a tagged union over the fourteen distribution kinds.
// Values are only built through the validating constructors, so a
// Distribution always holds exactly one well-formed kind.
type Distribution struct {
	kind Kind
	path string

	// values, pvalues
	values  []any
	weights []float64 // normalized cumulative weights for pvalues

	// range, linspace, logspace, geomspace
	start, stop, step, base float64
	num                     int
	integer                 bool // range over integral bounds yields ints

	// continuous kinds
	low, high, loc, scale, q float64

	warnings []string
}

// paramSpec lists the parameter names of a kind in positional order,
// with defaults for the optional ones.
type paramSpec struct {
	names    []string
	defaults map[string]float64
}

var paramSpecs = map[Kind]paramSpec{
	KindRange:       {names: []string{"start", "stop", "step"}, defaults: map[string]float64{"step": 1}},
	KindLinspace:    {names: []string{"start", "stop", "num"}},
	KindLogspace:    {names: []string{"start", "stop", "num", "base"}, defaults: map[string]float64{"base": 10}},
	KindGeomspace:   {names: []string{"start", "stop", "num"}},
	KindUniform:     {names: []string{"low", "high"}},
	KindQUniform:    {names: []string{"low", "high", "q"}},
	KindLogUniform:  {names: []string{"low", "high"}},
	KindQLogUniform: {names: []string{"low", "high", "q"}},
	KindNormal:      {names: []string{"loc", "scale"}},
	KindQNormal:     {names: []string{"loc", "scale", "q"}},
	KindLogNormal:   {names: []string{"loc", "scale"}},
	KindQLogNormal:  {names: []string{"loc", "scale", "q"}},
}

// Kind returns the distribution kind.
func (d *Distribution) Kind() Kind { return d.kind }

// Path returns the field path the distribution was read from, if any.
func (d *Distribution) Path() string { return d.path }

// IsEnumerable reports whether the distribution has a finite value set.
func (d *Distribution) IsEnumerable() bool { return d.kind.IsEnumerable() }

// Warnings returns soft problems found at construction, such as pvalues
// weights that had to be re-normalized.
func (d *Distribution) Warnings() []string { return d.warnings }

// FromNode builds a distribution from its document form, a mapping with
// exactly one of the fourteen kind keys:
//
//	lr: {loguniform: {low: -9, high: -2}}
//	units: {values: [32, 64]}
//
// Kind keys holding null or an empty value do not count. Zero or several
// set kinds fail with an ambiguous distribution error.
func FromNode(node *ast.Node, path string) (*Distribution, error) {
	if !node.IsMapping() {
		return nil, specErrors.New(specErrors.ErrorTypeAmbiguousDistribution, path,
			"distribution must be a mapping with exactly one of: %s", strings.Join(KindNames(), ", ")).
			At(node.Location)
	}

	var found []string
	for _, e := range node.Entries {
		if Kind(e.Key).IsValid() {
			if !isEmpty(e.Value) {
				found = append(found, e.Key)
			}
			continue
		}
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, e.Key),
			"unknown distribution kind '%s'", e.Key).
			At(e.Value.Location).
			WithSuggestion(specErrors.SuggestFieldName(e.Key, KindNames()))
	}

	switch len(found) {
	case 0:
		return nil, specErrors.New(specErrors.ErrorTypeAmbiguousDistribution, path,
			"distribution sets none of the %d kinds", len(allKinds)).
			At(node.Location)
	case 1:
	default:
		return nil, specErrors.New(specErrors.ErrorTypeAmbiguousDistribution, path,
			"distribution sets %d kinds (%s), exactly one is allowed", len(found), strings.Join(found, ", ")).
			At(node.Location)
	}

	params, _ := node.Get(found[0])
	d, err := parse(Kind(found[0]), params, ast.JoinPath(path, found[0]))
	if err != nil {
		return nil, err
	}
	d.path = path
	return d, nil
}

// New builds a distribution of the given kind from its parameter node,
// the value under the kind key.
func New(kind Kind, params *ast.Node) (*Distribution, error) {
	if !kind.IsValid() {
		return nil, specErrors.New(specErrors.ErrorTypeAmbiguousDistribution, "",
			"unknown distribution kind '%s'", kind).
			WithSuggestion(specErrors.SuggestFieldName(string(kind), KindNames()))
	}
	return parse(kind, params, string(kind))
}

func parse(kind Kind, params *ast.Node, path string) (*Distribution, error) {
	if params == nil {
		params = ast.Null()
	}
	var (
		d   *Distribution
		err error
	)
	switch kind {
	case KindValues:
		d, err = parseValues(params, path)
	case KindPValues:
		d, err = parsePValues(params, path)
	default:
		var p map[string]float64
		p, err = parseParams(kind, params, path)
		if err != nil {
			return nil, err
		}
		d, err = fromParams(kind, p)
	}
	if err != nil {
		if e, ok := err.(*specErrors.Error); ok && e.Path == "" {
			e.Path = path
			e.Section = ast.Section(path)
			if !e.Location.IsValid() {
				e.Location = params.Location
			}
		}
		return nil, err
	}
	return d, nil
}

func parseValues(params *ast.Node, path string) (*Distribution, error) {
	if !params.IsSequence() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "values must be a list").At(params.Location)
	}
	values := make([]any, len(params.Items))
	for i, item := range params.Items {
		values[i] = item.Interface()
	}
	return NewValues(values...)
}

func parsePValues(params *ast.Node, path string) (*Distribution, error) {
	if !params.IsSequence() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "pvalues must be a list of [value, weight] pairs").At(params.Location)
	}
	values := make([]any, 0, len(params.Items))
	weights := make([]float64, 0, len(params.Items))
	for i, item := range params.Items {
		itemPath := ast.IndexPath(path, i)
		var value, weight *ast.Node
		switch {
		case item.IsSequence() && item.Len() == 2:
			value, weight = item.Items[0], item.Items[1]
		case item.IsMapping() && item.Has("value") && item.Has("weight") && item.Len() == 2:
			value, _ = item.Get("value")
			weight, _ = item.Get("weight")
		default:
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, itemPath,
				"pvalues entry must be a [value, weight] pair").At(item.Location)
		}
		w, ok := weight.AsFloat()
		if !ok {
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, ast.IndexPath(itemPath, 1),
				"weight must be a number").At(weight.Location)
		}
		values = append(values, value.Interface())
		weights = append(weights, w)
	}
	return NewPValues(values, weights)
}

// parseParams reads numeric parameters given as a mapping, a positional
// list or a colon separated string such as "0:10:2".
func parseParams(kind Kind, params *ast.Node, path string) (map[string]float64, error) {
	spec := paramSpecs[kind]
	out := make(map[string]float64, len(spec.names))

	var positional []*ast.Node
	switch {
	case params.IsMapping():
		for _, e := range params.Entries {
			if !slices.Contains(spec.names, e.Key) {
				return nil, specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, e.Key),
					"unknown %s parameter '%s'", kind, e.Key).
					At(e.Value.Location).
					WithSuggestion(specErrors.SuggestFieldName(e.Key, spec.names))
			}
			f, err := number(e.Value)
			if err != nil {
				return nil, specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, e.Key), "%v", err).At(e.Value.Location)
			}
			out[e.Key] = f
		}
	case params.IsSequence():
		positional = params.Items
	case params.IsScalar():
		s, ok := params.AsString()
		if !ok {
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
				"%s parameters must be a mapping, a list or a \"a:b:c\" string", kind).At(params.Location)
		}
		for _, part := range strings.Split(s, ":") {
			positional = append(positional, ast.Scalar(strings.TrimSpace(part)))
		}
	default:
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
			"%s parameters must be a mapping, a list or a \"a:b:c\" string", kind).At(params.Location)
	}

	if positional != nil {
		if len(positional) > len(spec.names) {
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
				"%s takes at most %d parameters (%s), got %d", kind, len(spec.names), strings.Join(spec.names, ", "), len(positional)).
				At(params.Location)
		}
		for i, item := range positional {
			f, err := number(item)
			if err != nil {
				return nil, specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, spec.names[i]), "%v", err).At(params.Location)
			}
			out[spec.names[i]] = f
		}
	}

	for _, name := range spec.names {
		if _, ok := out[name]; ok {
			continue
		}
		if def, ok := spec.defaults[name]; ok {
			out[name] = def
			continue
		}
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
			"%s requires '%s'", kind, name).
			At(params.Location).
			WithSuggestion(fmt.Sprintf("Set %s: {%s}", kind, strings.Join(spec.names, ", ")))
	}
	return out, nil
}

// number reads a numeric scalar, accepting numeric strings.
func number(n *ast.Node) (float64, error) {
	if f, ok := n.AsFloat(); ok {
		return f, nil
	}
	if s, ok := n.AsString(); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("expected a number, got %v", n.Interface())
}

func fromParams(kind Kind, p map[string]float64) (*Distribution, error) {
	switch kind {
	case KindRange:
		return NewRange(p["start"], p["stop"], p["step"])
	case KindLinspace:
		num, err := count(p["num"])
		if err != nil {
			return nil, err
		}
		return NewLinspace(p["start"], p["stop"], num)
	case KindLogspace:
		num, err := count(p["num"])
		if err != nil {
			return nil, err
		}
		return NewLogspace(p["start"], p["stop"], num, p["base"])
	case KindGeomspace:
		num, err := count(p["num"])
		if err != nil {
			return nil, err
		}
		return NewGeomspace(p["start"], p["stop"], num)
	case KindUniform, KindQUniform, KindLogUniform, KindQLogUniform:
		return newBounded(kind, p["low"], p["high"], p["q"])
	case KindNormal, KindQNormal, KindLogNormal, KindQLogNormal:
		return newGaussian(kind, p["loc"], p["scale"], p["q"])
	}
	return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "unsupported distribution kind '%s'", kind)
}

func count(f float64) (int, error) {
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, specErrors.New(specErrors.ErrorTypeSemantic, "", "num must be a positive integer, got %v", f)
	}
	return int(f), nil
}

// NewValues returns an enumerated distribution over values.
func NewValues(values ...any) (*Distribution, error) {
	if len(values) == 0 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "values must not be empty")
	}
	out := make([]any, len(values))
	copy(out, values)
	return &Distribution{kind: KindValues, values: out}, nil
}

// NewPValues returns a weighted enumerated distribution. Weights must be
// non-negative with a positive sum; a sum other than 1 is re-normalized
// and reported through Warnings.
func NewPValues(values []any, weights []float64) (*Distribution, error) {
	if len(values) == 0 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "pvalues must not be empty")
	}
	if len(values) != len(weights) {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "",
			"pvalues has %d values but %d weights", len(values), len(weights))
	}

	sum := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, "",
				"pvalues weight %d must be a non-negative number, got %v", i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "pvalues weights must not all be zero")
	}

	d := &Distribution{kind: KindPValues, values: make([]any, len(values)), weights: make([]float64, len(weights))}
	copy(d.values, values)
	acc := 0.0
	for i, w := range weights {
		acc += w / sum
		d.weights[i] = acc
	}
	d.weights[len(d.weights)-1] = 1
	if math.Abs(sum-1) > weightTolerance {
		d.warnings = append(d.warnings, fmt.Sprintf("pvalues weights sum to %g, normalized to 1", sum))
	}
	return d, nil
}

// NewRange returns the half-open arithmetic progression [start, stop)
// with the given step. When start, stop and step are all integral the
// values are ints.
func NewRange(start, stop, step float64) (*Distribution, error) {
	if step == 0 || math.IsNaN(step) {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "range step must not be zero")
	}
	n := math.Ceil((stop - start) / step)
	if n < 1 || math.IsNaN(n) {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "",
			"range(%v, %v, %v) is empty", start, stop, step)
	}
	if n > math.MaxInt32 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "",
			"range(%v, %v, %v) has too many values", start, stop, step)
	}
	return &Distribution{
		kind:    KindRange,
		start:   start,
		stop:    stop,
		step:    step,
		num:     int(n),
		integer: isIntegral(start) && isIntegral(stop) && isIntegral(step),
	}, nil
}

// NewLinspace returns num evenly spaced values over [start, stop].
func NewLinspace(start, stop float64, num int) (*Distribution, error) {
	if num < 1 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "linspace num must be positive, got %d", num)
	}
	return &Distribution{kind: KindLinspace, start: start, stop: stop, num: num}, nil
}

// NewLogspace returns num values base**x for x evenly spaced over
// [start, stop].
func NewLogspace(start, stop float64, num int, base float64) (*Distribution, error) {
	if num < 1 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "logspace num must be positive, got %d", num)
	}
	if base <= 0 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "logspace base must be positive, got %v", base)
	}
	return &Distribution{kind: KindLogspace, start: start, stop: stop, num: num, base: base}, nil
}

// NewGeomspace returns num values spaced evenly on a log scale between
// start and stop, both included. The bounds must be non-zero and share a
// sign.
func NewGeomspace(start, stop float64, num int) (*Distribution, error) {
	if num < 1 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "geomspace num must be positive, got %d", num)
	}
	if start == 0 || stop == 0 {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "geomspace bounds must be non-zero")
	}
	if (start < 0) != (stop < 0) {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "", "geomspace bounds must have the same sign")
	}
	return &Distribution{kind: KindGeomspace, start: start, stop: stop, num: num}, nil
}

// NewUniform returns the continuous uniform distribution over [low, high).
func NewUniform(low, high float64) (*Distribution, error) {
	return newBounded(KindUniform, low, high, 0)
}

// NewQUniform returns a uniform distribution rounded to multiples of q.
func NewQUniform(low, high, q float64) (*Distribution, error) {
	return newBounded(KindQUniform, low, high, q)
}

// NewLogUniform returns exp(uniform(low, high)).
func NewLogUniform(low, high float64) (*Distribution, error) {
	return newBounded(KindLogUniform, low, high, 0)
}

// NewQLogUniform returns a log-uniform distribution rounded to multiples of q.
func NewQLogUniform(low, high, q float64) (*Distribution, error) {
	return newBounded(KindQLogUniform, low, high, q)
}

// NewNormal returns the normal distribution with mean loc and standard
// deviation scale.
func NewNormal(loc, scale float64) (*Distribution, error) {
	return newGaussian(KindNormal, loc, scale, 0)
}

// NewQNormal returns a normal distribution rounded to multiples of q.
func NewQNormal(loc, scale, q float64) (*Distribution, error) {
	return newGaussian(KindQNormal, loc, scale, q)
}

// NewLogNormal returns exp(normal(loc, scale)).
func NewLogNormal(loc, scale float64) (*Distribution, error) {
	return newGaussian(KindLogNormal, loc, scale, 0)
}

// NewQLogNormal returns a log-normal distribution rounded to multiples of q.
func NewQLogNormal(loc, scale, q float64) (*Distribution, error) {
	return newGaussian(KindQLogNormal, loc, scale, q)
}

func newBounded(kind Kind, low, high, q float64) (*Distribution, error) {
	if !(low < high) {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "",
			"%s requires low < high, got low=%v high=%v", kind, low, high)
	}
	if err := checkQ(kind, q); err != nil {
		return nil, err
	}
	return &Distribution{kind: kind, low: low, high: high, q: q}, nil
}

func newGaussian(kind Kind, loc, scale, q float64) (*Distribution, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "",
			"%s requires a positive scale, got %v", kind, scale)
	}
	if err := checkQ(kind, q); err != nil {
		return nil, err
	}
	return &Distribution{kind: kind, loc: loc, scale: scale, q: q}, nil
}

func checkQ(kind Kind, q float64) error {
	if kind.IsQuantized() && !(q > 0) {
		return specErrors.New(specErrors.ErrorTypeSemantic, "", "%s requires a positive q, got %v", kind, q)
	}
	return nil
}

// String describes the distribution, e.g. "linspace(0, 1, 5)".
func (d *Distribution) String() string {
	switch d.kind {
	case KindValues:
		return fmt.Sprintf("values%v", d.values)
	case KindPValues:
		parts := make([]string, len(d.values))
		prev := 0.0
		for i, v := range d.values {
			parts[i] = fmt.Sprintf("%v:%.4g", v, d.weights[i]-prev)
			prev = d.weights[i]
		}
		return fmt.Sprintf("pvalues[%s]", strings.Join(parts, " "))
	case KindRange:
		return fmt.Sprintf("range(%v, %v, %v)", d.start, d.stop, d.step)
	case KindLinspace, KindGeomspace:
		return fmt.Sprintf("%s(%v, %v, %d)", d.kind, d.start, d.stop, d.num)
	case KindLogspace:
		return fmt.Sprintf("logspace(%v, %v, %d, base=%v)", d.start, d.stop, d.num, d.base)
	case KindUniform, KindLogUniform:
		return fmt.Sprintf("%s(%v, %v)", d.kind, d.low, d.high)
	case KindQUniform, KindQLogUniform:
		return fmt.Sprintf("%s(%v, %v, q=%v)", d.kind, d.low, d.high, d.q)
	case KindNormal, KindLogNormal:
		return fmt.Sprintf("%s(%v, %v)", d.kind, d.loc, d.scale)
	case KindQNormal, KindQLogNormal:
		return fmt.Sprintf("%s(%v, %v, q=%v)", d.kind, d.loc, d.scale, d.q)
	}
	return string(d.kind)
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53
}

// isEmpty reports whether a kind value leaves the kind unset.
func isEmpty(n *ast.Node) bool {
	switch {
	case n.IsNull():
		return true
	case n.IsSequence(), n.IsMapping():
		return n.Len() == 0
	}
	str, ok := n.AsString()
	return ok && str == ""
}
