package matrix

import (
	"iter"
	"math"

	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// Size returns the number of values of an enumerable distribution.
func (d *Distribution) Size() (int, error) {
	switch d.kind {
	case KindValues, KindPValues:
		return len(d.values), nil
	case KindRange, KindLinspace, KindLogspace, KindGeomspace:
		return d.num, nil
	}
	return 0, d.notEnumerable()
}

// At returns the i-th enumerated value without materializing the others.
func (d *Distribution) At(i int) (any, error) {
	size, err := d.Size()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= size {
		return nil, specErrors.New(specErrors.ErrorTypeConfiguration, d.path,
			"index %d out of range for %s with %d values", i, d.kind, size)
	}
	return d.at(i), nil
}

// at assumes an enumerable kind and a valid index.
func (d *Distribution) at(i int) any {
	switch d.kind {
	case KindValues, KindPValues:
		return d.values[i]
	case KindRange:
		if d.integer {
			return int(d.start) + i*int(d.step)
		}
		return d.start + float64(i)*d.step
	case KindLinspace:
		return linspaceAt(d.start, d.stop, d.num, i)
	case KindLogspace:
		return math.Pow(d.base, linspaceAt(d.start, d.stop, d.num, i))
	case KindGeomspace:
		return geomspaceAt(d.start, d.stop, d.num, i)
	}
	return nil
}

// Enumerate returns every value of an enumerable distribution in order.
func (d *Distribution) Enumerate() ([]any, error) {
	size, err := d.Size()
	if err != nil {
		return nil, err
	}
	out := make([]any, size)
	for i := range out {
		out[i] = d.at(i)
	}
	return out, nil
}

// Values returns a lazy sequence over the enumerated values. Continuous
// distributions yield nothing; call Size first to tell them apart.
func (d *Distribution) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		size, err := d.Size()
		if err != nil {
			return
		}
		for i := 0; i < size; i++ {
			if !yield(d.at(i)) {
				return
			}
		}
	}
}

// First returns a deterministic representative value: the first
// enumerated value, or for continuous kinds the (quantized) lower bound
// or location mapped through the kind's transform.
func (d *Distribution) First() any {
	if d.kind.IsEnumerable() {
		return d.at(0)
	}
	switch d.kind {
	case KindUniform, KindQUniform, KindLogUniform, KindQLogUniform:
		return d.transform(d.low)
	default:
		return d.transform(d.loc)
	}
}

func (d *Distribution) notEnumerable() error {
	return specErrors.New(specErrors.ErrorTypeNotEnumerable, d.path,
		"%s is a continuous distribution and cannot be enumerated", d.kind)
}

// linspaceAt matches numpy.linspace with the endpoint included.
func linspaceAt(start, stop float64, num, i int) float64 {
	if num == 1 {
		return start
	}
	if i == num-1 {
		return stop
	}
	return start + float64(i)*(stop-start)/float64(num-1)
}

// geomspaceAt matches numpy.geomspace, keeping both endpoints exact.
func geomspaceAt(start, stop float64, num, i int) float64 {
	if i == 0 {
		return start
	}
	if i == num-1 {
		return stop
	}
	sign := 1.0
	if start < 0 {
		sign = -1
	}
	logStart := math.Log10(math.Abs(start))
	logStop := math.Log10(math.Abs(stop))
	return sign * math.Pow(10, linspaceAt(logStart, logStop, num, i))
}
