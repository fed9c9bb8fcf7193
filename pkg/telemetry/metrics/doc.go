// Package metrics provides Prometheus metrics for specification builds and
// group expansion.
//
// # Metrics Categories
//
//   - Pipeline Metrics: builds by kind and status, stage durations, error
//     types and search space warnings
//   - Expansion Metrics: expansions by strategy, their duration, the number
//     of experiments produced and each project's search space cardinality
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	spec, err := specification.Load(ctx, doc, specification.WithMetrics(collector))
//	exp, err := group.NewExpander(spec, group.WithMetrics(collector))
//
// A nil *Collector is valid and records nothing.
//
// # Prometheus Endpoint
//
// Handler serves the registry. The watch command mounts it while it runs:
//
//	# HELP specfile_specifications_total Total number of specification builds
//	# TYPE specfile_specifications_total counter
//	specfile_specifications_total{kind="group",status="validated"} 3
//
// # Cardinality Management
//
// Kind, stage, strategy and error type labels are bounded enums. Project
// labels are capped by MetricsConfig.MaxCardinality; projects past the cap
// are reported as "other".
package metrics
