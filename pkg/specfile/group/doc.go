// Package group expands a validated group specification into experiment
// specifications, one per point of its search space.
//
// The strategy follows the group settings. Grid search enumerates the whole
// Cartesian product in a fixed order. Random search and hyperband draw
// points from per-index generators seeded from the group seed, so point i is
// the same however many workers build the experiments and in whichever
// order. Without settings.seed the seed comes from WithSeed, and failing
// that from the fingerprint of the group document.
//
// Each experiment document is the raw group document with the point added
// to its declarations, the group-only settings removed and its kind set to
// experiment. It then goes through the same pipeline as any experiment.
//
//	exp, err := group.NewExpander(spec, group.WithWorkers(4))
//	if err != nil {
//		return err
//	}
//	experiments, err := exp.Expand(ctx, 0)
package group
