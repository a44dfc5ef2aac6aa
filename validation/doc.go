// Package validation checks workflow documents and other user input
// before the engine touches them.
//
// Struct checks run off `validate` tags via go-playground/validator, with
// json tag names in messages. Cross-field rules that tags cannot express
// use the fluent Validator:
//
//	v := validation.New().
//		Required("name", doc.Name).
//		Custom(len(doc.Nodes) > 0, "nodes", "must not be empty")
//	if err := v.Validate(); err != nil {
//		return err
//	}
//
// Failures come back as INVALID_WORKFLOW engine errors carrying the field
// list in their details.
package validation
