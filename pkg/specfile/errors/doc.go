// Package errors provides the rich error types reported while reading,
// resolving and validating specifications.
//
// Every error carries its category, the section and dotted field path it
// belongs to, and when known the source location, a rendered excerpt of the
// source and a suggested fix.
//
// # Error Types
//
// ErrorTypeSyntax: malformed YAML or directive
//
// ErrorTypeStructural: unknown or missing section, kind or version mismatch
//
// ErrorTypeSemantic: invalid section content, settings or expression
//
// ErrorTypeAmbiguousDistribution: zero or several distribution kinds set
//
// ErrorTypeUndeclaredVariable: reference to a name not in the declarations
//
// ErrorTypeConfiguration: group settings that cannot be expanded
//
// ErrorTypeNotEnumerable: enumerating a continuous distribution
//
// ErrorTypeNotReady: reading a specification before it is validated
//
// # Matching
//
// Callers branch with the standard library:
//
//	if errors.Is(err, specerrors.ErrStructural) { ... }
//
// ErrSpecification matches every defect of the document itself, including
// structural, semantic, ambiguous distribution and undeclared variable
// errors. ErrorList unwraps to its entries so a list matches whenever one
// of its errors does.
//
// # Error Format
//
//	[structural] foo: unknown section 'foo'
//	  --> experiment.yaml:7:1
//	  |
//	   6 | run: {cmd: train.py}
//	-> 7 | foo: 1
//	     | ^
//	  |
//	  = suggestion: Valid fields: version, project, kind, ...
package errors
