package group

import (
	"context"
)

// Strategy is the search algorithm used to pick points of a search space.
type Strategy string

const (
	StrategyGrid      Strategy = "grid"
	StrategyRandom    Strategy = "random"
	StrategyHyperband Strategy = "hyperband"
)

// Plan describes how a scheduler should run the experiments of a group.
type Plan struct {
	Strategy Strategy

	// Concurrency is the number of experiments the group allows to run at
	// once. It is a scheduling hint; nothing here enforces it.
	Concurrency int

	// Cardinality is the size of the search space, or -1 when unbounded.
	Cardinality int
}

// Scheduler runs expanded experiments. Implementations live outside this
// module; a hyperband scheduler drives its own allocation through
// Expander.Sampler.
type Scheduler interface {
	Schedule(ctx context.Context, experiments []*Experiment, plan Plan) error
}
