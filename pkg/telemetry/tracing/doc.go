// Package tracing provides OpenTelemetry tracing for the specfile packages.
//
// New installs a tracer provider exporting over OTLP gRPC and returns a
// Tracer. When tracing is disabled the Tracer wraps a noop tracer.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	spec, err := specification.Load(ctx, doc, specification.WithTracer(tracer.Tracer()))
//
// # Spans
//
//   - specification.build: one specification build, with a child span per
//     pipeline stage (specification.header_validated, .resolved, .validated)
//   - group.expand: one group expansion; every experiment build is a child
//
// # Sampling
//
// Three strategies are supported, each wrapped in ParentBased:
//   - always: sample every trace
//   - never: sample none
//   - ratio: sample a fraction of traces by trace ID
package tracing
