package matrix

import (
	"math"
	"math/rand/v2"
	"sort"

	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// NewRand returns the generator used for sampling, a PCG source seeded
// with (seed, stream). Distinct streams give independent sequences for
// the same seed.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// Sample draws count values. Enumerable kinds draw uniformly with
// replacement (pvalues by weight); continuous kinds draw from the named
// distribution. The same rng state always yields the same values.
func (d *Distribution) Sample(rng *rand.Rand, count int) ([]any, error) {
	if rng == nil {
		return nil, specErrors.New(specErrors.ErrorTypeConfiguration, d.path, "sampling requires a random source")
	}
	if count < 0 {
		return nil, specErrors.New(specErrors.ErrorTypeConfiguration, d.path, "sample count must not be negative, got %d", count)
	}
	out := make([]any, count)
	for i := range out {
		out[i] = d.draw(rng)
	}
	return out, nil
}

// SampleOne draws a single value.
func (d *Distribution) SampleOne(rng *rand.Rand) (any, error) {
	values, err := d.Sample(rng, 1)
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

func (d *Distribution) draw(rng *rand.Rand) any {
	switch d.kind {
	case KindValues, KindRange, KindLinspace, KindLogspace, KindGeomspace:
		return d.at(rng.IntN(d.num0()))
	case KindPValues:
		u := rng.Float64()
		i := sort.Search(len(d.weights), func(i int) bool { return u < d.weights[i] })
		if i == len(d.weights) {
			i--
		}
		return d.values[i]
	case KindUniform, KindQUniform, KindLogUniform, KindQLogUniform:
		return d.transform(d.low + (d.high-d.low)*rng.Float64())
	default:
		return d.transform(d.loc + d.scale*rng.NormFloat64())
	}
}

// num0 returns the enumerated size of an enumerable kind.
func (d *Distribution) num0() int {
	if d.kind == KindValues || d.kind == KindPValues {
		return len(d.values)
	}
	return d.num
}

// transform maps a raw draw through the kind's exponent and quantization.
func (d *Distribution) transform(x float64) float64 {
	switch d.kind {
	case KindLogUniform, KindQLogUniform, KindLogNormal, KindQLogNormal:
		x = math.Exp(x)
	}
	if d.kind.IsQuantized() {
		x = math.Round(x/d.q) * d.q
	}
	return x
}
