// Package parser reads YAML specification files into document trees.
//
// The parser keeps key order and source locations, resolves YAML anchors
// and merge keys, and turns single-key `for`/`if` mappings into directive
// nodes so later stages can expand them:
//
//	model:
//	  layers:
//	    - for:
//	        each: units
//	        in: "{{ hidden }}"
//	        do: {dense: {units: "{{ units }}"}}
//
// # Basic Usage
//
// Read and merge several files, later files overriding earlier sections:
//
//	p := parser.NewParser()
//	doc, err := p.Read("base.yaml", "group.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse from memory:
//
//	doc, err := p.ParseBytes(data, "memory://spec")
//
// Encode a tree back to YAML:
//
//	out, err := parser.Encode(doc)
//
// # Error Handling
//
// Syntax problems are reported together as an *errors.ErrorList whose
// entries carry the file, line and column plus an excerpt of the source.
package parser
