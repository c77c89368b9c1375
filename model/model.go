// Package model holds the schema-bearing primitives shared by integration definitions.
package model

// WithName is an interface for defining a name for a data type.
// The name identifies the data type when it is bound as an interface entity.
type WithName interface {
	Name() string
}

// WithSchema is an interface for defining a schema and example data for a data type.
// Any Go model exposing its JSON schema can be bound as an interface entity.
type WithSchema interface {
	WithName
	Schema() []byte
	Example() []byte
}
