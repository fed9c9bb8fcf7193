// Package resolver expands the for/if directives and {{ ref }}
// placeholders of a specification document.
//
// Placeholders reference declared names with optional attribute and index
// steps, parsed as HCL traversals:
//
//	cmd: "train --lr={{ lr }} --units={{ model.layers[0] }}"
//	optimizer: "{{ optimizer }}"   # whole value, keeps its type
//
// Directive operands are HCL expressions evaluated with go-cty against the
// declarations. Only declared names and the functions range, length,
// contains, min and max are available:
//
//	layers:
//	  if:
//	    cond: "dropout > 0 && contains(features, \"bn\")"
//	    do: {dropout: {rate: "{{ dropout }}"}}
//	blocks:
//	  for:
//	    each: i
//	    in: "range(num_layers)"
//	    do: {dense: {units: "{{ units[i] }}"}}
//
// A false condition or an empty loop removes the node entirely. In a
// sequence, loop results are spliced in place; as a mapping value they
// are merged when every iteration yields a mapping and concatenated into a
// sequence otherwise.
//
// Resolution is single-pass and top-down. The input tree and the
// Declarations are never modified, so a single base can be shared across
// goroutines.
package resolver
