// Package specification takes a merged specification document through its
// build pipeline:
//
//	Loaded -> HeaderValidated -> Resolved -> Validated
//
// HeaderValidated resolves the version, project, kind and settings sections
// against the declarations and checks the section layout. Resolved expands
// every directive of the document; a group binds the first value of each
// matrix parameter so the document is known to resolve before any
// expansion. Validated runs the structural and semantic passes again on the
// resolved document, then the kind's hook.
//
// Each kind is described by a Descriptor value holding its section layout
// and hook. Experiment, Group, Job and Plugin are predefined; Load picks one
// from the document's kind.
//
// Constructors return only validated specifications. Accessors on a value
// that is not validated fail with a not-ready error.
package specification
