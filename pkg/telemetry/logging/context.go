package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// ProjectKey is the context key for the project name.
	ProjectKey contextKey = "project"

	// SourcesKey is the context key for the files a document was read from.
	SourcesKey contextKey = "sources"

	// ExperimentKey is the context key for the index of an experiment
	// within its group.
	ExperimentKey contextKey = "experiment"
)

// WithProject adds a project name to the context.
func WithProject(ctx context.Context, project string) context.Context {
	return context.WithValue(ctx, ProjectKey, project)
}

// GetProject retrieves the project name from the context.
func GetProject(ctx context.Context) string {
	if project, ok := ctx.Value(ProjectKey).(string); ok {
		return project
	}
	return ""
}

// WithSources adds the source files of a document to the context.
func WithSources(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, SourcesKey, sources)
}

// GetSources retrieves the source files from the context.
func GetSources(ctx context.Context) []string {
	if sources, ok := ctx.Value(SourcesKey).([]string); ok {
		return sources
	}
	return nil
}

// WithExperiment adds an experiment index to the context.
func WithExperiment(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, ExperimentKey, index)
}

// GetExperiment retrieves the experiment index from the context.
func GetExperiment(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(ExperimentKey).(int)
	return index, ok
}

// contextFields extracts the log fields stored in ctx, including the
// active trace and span IDs.
func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr

	if project := GetProject(ctx); project != "" {
		attrs = append(attrs, slog.String(string(ProjectKey), project))
	}
	if sources := GetSources(ctx); len(sources) > 0 {
		attrs = append(attrs, slog.Any(string(SourcesKey), sources))
	}
	if index, ok := GetExperiment(ctx); ok {
		attrs = append(attrs, slog.Int(string(ExperimentKey), index))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()))
	}
	return attrs
}

// contextHandler adds the context fields to every record logged through
// one of the *Context methods.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextFields(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
