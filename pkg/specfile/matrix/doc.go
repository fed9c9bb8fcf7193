// Package matrix models hyperparameter search spaces.
//
// A Distribution holds exactly one of fourteen kinds. Six are enumerable
// (values, pvalues, range, linspace, logspace, geomspace) and report a
// size; eight are continuous (uniform, quniform, loguniform, qloguniform,
// normal, qnormal, lognormal, qlognormal) and can only be sampled.
//
// Numeric ranges follow numpy: range excludes stop, linspace, logspace and
// geomspace include both ends. loguniform draws exp(uniform(low, high)) and
// lognormal draws exp(normal(loc, scale)); q-prefixed kinds round each draw
// to the nearest multiple of q.
//
// A SearchSpace maps names to distributions:
//
//	space, err := matrix.SpaceFromNode(matrixNode, "settings.matrix")
//	card, err := space.Cardinality()
//	if errors.Is(err, matrix.ErrUnbounded) {
//	    // continuous parameters, sample instead
//	}
//	point, err := space.GridPoint(3)
//
// Sampling never uses a global source. Pass a *rand.Rand, usually from
// NewRand(seed, index), so draws are reproducible.
package matrix
