package matrix

import (
	"errors"
	"math/bits"
	"math/rand/v2"
	"sort"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// ErrUnbounded is returned by Cardinality when the space holds a
// continuous distribution. It is not a failure: callers branch on it to
// pick a sampling strategy.
var ErrUnbounded = errors.New("matrix: search space is unbounded")

// Param is one parameter assignment of a point in the space.
type Param struct {
	Name  string
	Value any
}

// Point is a concrete assignment of every parameter, ordered by name.
type Point []Param

// Map returns the point as a name to value map.
func (p Point) Map() map[string]any {
	out := make(map[string]any, len(p))
	for _, param := range p {
		out[param.Name] = param.Value
	}
	return out
}

// Node returns the point as a mapping node, ordered by name.
func (p Point) Node() *ast.Node {
	entries := make([]*ast.Entry, len(p))
	for i, param := range p {
		value, err := ast.FromInterface(param.Value)
		if err != nil {
			value = ast.Scalar(param.Value)
		}
		entries[i] = ast.E(param.Name, value)
	}
	return ast.Mapping(entries...)
}

// SearchSpace maps parameter names to distributions. Iteration, grid
// enumeration and sampling all follow lexicographic name order.
type SearchSpace struct {
	names []string
	dists map[string]*Distribution
}

// NewSearchSpace returns a search space over the given distributions.
func NewSearchSpace(dists map[string]*Distribution) *SearchSpace {
	s := &SearchSpace{dists: make(map[string]*Distribution, len(dists))}
	for name, d := range dists {
		s.names = append(s.names, name)
		s.dists[name] = d
	}
	sort.Strings(s.names)
	return s
}

// SpaceFromNode builds a search space from a settings.matrix mapping. All
// invalid entries are reported together.
func SpaceFromNode(node *ast.Node, path string) (*SearchSpace, error) {
	if !node.IsMapping() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
			"matrix must be a mapping of parameter name to distribution").At(node.Location)
	}
	if node.Len() == 0 {
		return nil, specErrors.New(specErrors.ErrorTypeConfiguration, path, "matrix must define at least one parameter").At(node.Location)
	}

	errs := specErrors.NewErrorList()
	dists := make(map[string]*Distribution, node.Len())
	for _, e := range node.Entries {
		d, err := FromNode(e.Value, ast.JoinPath(path, e.Key))
		if err != nil {
			errs.Merge(err)
			continue
		}
		dists[e.Key] = d
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return NewSearchSpace(dists), nil
}

// Names returns the parameter names in lexicographic order.
func (s *SearchSpace) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of parameters.
func (s *SearchSpace) Len() int { return len(s.names) }

// Get returns the distribution of a parameter.
func (s *SearchSpace) Get(name string) (*Distribution, bool) {
	d, ok := s.dists[name]
	return d, ok
}

// IsFinite reports whether every distribution is enumerable.
func (s *SearchSpace) IsFinite() bool {
	for _, name := range s.names {
		if !s.dists[name].IsEnumerable() {
			return false
		}
	}
	return true
}

// Warnings collects the construction warnings of every distribution,
// prefixed with the parameter name.
func (s *SearchSpace) Warnings() []string {
	var out []string
	for _, name := range s.names {
		for _, w := range s.dists[name].Warnings() {
			out = append(out, name+": "+w)
		}
	}
	return out
}

// Cardinality returns the number of distinct points, the product of every
// distribution's size. It returns ErrUnbounded when any distribution is
// continuous.
func (s *SearchSpace) Cardinality() (int, error) {
	if !s.IsFinite() {
		return 0, ErrUnbounded
	}
	total := uint64(1)
	for _, name := range s.names {
		size, _ := s.dists[name].Size()
		hi, lo := bits.Mul64(total, uint64(size))
		if hi != 0 || lo > uint64(maxInt) {
			return 0, specErrors.New(specErrors.ErrorTypeConfiguration, "settings.matrix",
				"search space cardinality overflows")
		}
		total = lo
	}
	return int(total), nil
}

const maxInt = int(^uint(0) >> 1)

// GridPoint returns the i-th point of the Cartesian product in mixed
// radix order: names lexicographically, the last name varying fastest.
func (s *SearchSpace) GridPoint(i int) (Point, error) {
	card, err := s.Cardinality()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= card {
		return nil, specErrors.New(specErrors.ErrorTypeConfiguration, "settings.matrix",
			"grid index %d out of range [0, %d)", i, card)
	}

	point := make(Point, len(s.names))
	rest := i
	for j := len(s.names) - 1; j >= 0; j-- {
		d := s.dists[s.names[j]]
		size, _ := d.Size()
		point[j] = Param{Name: s.names[j], Value: d.at(rest % size)}
		rest /= size
	}
	return point, nil
}

// SamplePoint draws one value per parameter, in name order, from rng.
func (s *SearchSpace) SamplePoint(rng *rand.Rand) (Point, error) {
	point := make(Point, len(s.names))
	for j, name := range s.names {
		v, err := s.dists[name].SampleOne(rng)
		if err != nil {
			return nil, err
		}
		point[j] = Param{Name: name, Value: v}
	}
	return point, nil
}

// FirstPoint assigns every parameter its First value.
func (s *SearchSpace) FirstPoint() Point {
	point := make(Point, len(s.names))
	for j, name := range s.names {
		point[j] = Param{Name: name, Value: s.dists[name].First()}
	}
	return point
}
