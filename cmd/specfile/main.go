// Specfile reads, validates and expands experiment specification files.
//
// A specification is a YAML document describing an experiment, a group of
// experiments over a hyperparameter search space, a job or a plugin.
// Several files are merged in order, so a base document can be combined
// with per-run overlays.
//
// Usage:
//
//	# Validate a specification
//	specfile check -f polyaxonfile.yaml
//
//	# Merge an overlay and print the group's search space
//	specfile space -f polyaxonfile.yaml -f sweep.yaml
//
//	# Materialize the experiments of a group
//	specfile expand -f polyaxonfile.yaml --format json
//
//	# Revalidate on every change and serve metrics and health probes
//	specfile watch -f polyaxonfile.yaml --listen :9090
package main

import "os"

func main() {
	os.Exit(Execute())
}
