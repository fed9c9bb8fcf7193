// Package telemetry wires the observability components of specfile
// together.
//
// # Components
//
//   - logging: structured logging with secret redaction
//   - metrics: Prometheus metrics for builds and expansions
//   - tracing: OpenTelemetry spans over OTLP
//   - health: liveness and readiness probes
//
// # Usage
//
//	tel, err := telemetry.New(&cfg.Telemetry, telemetry.WithBuildInfo(version, commit))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	spec, err := specification.Load(ctx, doc,
//	    specification.WithLogger(tel.Logger().Logger),
//	    specification.WithMetrics(tel.Metrics()),
//	    specification.WithTracer(tel.Tracer().Tracer()))
//
// Handler exposes the metrics and the probes over HTTP; the watch command
// serves it when watch.listen_address is set.
package telemetry
