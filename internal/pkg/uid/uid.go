// Package uid generates unique identifiers.
//
// NumberID produces sortable int64 IDs for database primary keys. StringID
// produces opaque string IDs for things like token identifiers.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
