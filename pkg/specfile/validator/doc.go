// Package validator checks specification documents against the layout of
// their kind.
//
// Validation runs in two passes. The structural pass looks only at the
// section layout: unknown or disallowed sections, missing required
// sections, the declared kind and the version range. The semantic pass
// runs on resolved documents and checks section contents, delegating the
// settings and matrix to the schema package.
//
// Both passes report every problem they find as an errors.ErrorList and
// never modify the document, so they can be re-run on validated documents.
//
// Example:
//
//	layout, _ := schema.LayoutFor(schema.KindGroup)
//	if err := validator.NewValidator().Validate(doc, layout); err != nil {
//		log.Fatal(err)
//	}
package validator
