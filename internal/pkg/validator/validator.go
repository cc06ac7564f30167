package validator

// Validator validates structs against their declared rules.
type Validator interface {
	// Validate returns nil when data passes all declared rules.
	Validate(data any) error
}
