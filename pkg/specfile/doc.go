// Package specfile reads experiment specification files and builds them.
//
// The subpackages do the work: parser reads and merges YAML documents,
// resolver expands for/if directives and {{ }} references, validator and
// schema check the result, specification runs the build pipeline and group
// expands a search space into experiments. A Loader ties them together
// with one configuration:
//
//	loader := specfile.NewLoader(&cfg.Specification, specfile.WithTelemetry(tel))
//	spec, err := loader.Load(ctx, "polyaxonfile.yaml", "override.yaml")
//	if err != nil {
//	    return err
//	}
//	expander, err := loader.Expander(spec, group.WithSeed(42))
//	experiments, err := expander.Expand(ctx, 0)
//
// Load does the same with the process-wide configuration.
package specfile
