package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys.
const (
	AttrKind        = attribute.Key("specfile.kind")
	AttrProject     = attribute.Key("specfile.project")
	AttrStage       = attribute.Key("specfile.stage")
	AttrStrategy    = attribute.Key("specfile.strategy")
	AttrExperiments = attribute.Key("specfile.experiments")
	AttrWorkers     = attribute.Key("specfile.workers")
	AttrErrorType   = attribute.Key("specfile.error.type")
	AttrSources     = attribute.Key("specfile.sources")
)

// SpecificationAttributes describes a specification build.
func SpecificationAttributes(kind string) []attribute.KeyValue {
	return []attribute.KeyValue{AttrKind.String(kind)}
}

// ExpansionAttributes describes a group expansion.
func ExpansionAttributes(project, strategy string, experiments, workers int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrProject.String(project),
		AttrStrategy.String(strategy),
		AttrExperiments.Int(experiments),
		AttrWorkers.Int(workers),
	}
}

// SourceAttributes describes the files a document was read from.
func SourceAttributes(sources []string) []attribute.KeyValue {
	return []attribute.KeyValue{AttrSources.StringSlice(sources)}
}
