package jsonmerge

import (
	"errors"
	"fmt"
)

// ErrKindMismatch is matched by every KindMismatchError.
var ErrKindMismatch = errors.New("cannot merge object schema with record schema")

// KindMismatchError occurs when a fixed-field object is merged with a record.
type KindMismatchError struct {
	Left  Kind
	Right Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("%s (got %s and %s)", ErrKindMismatch, e.Left, e.Right)
}

func (e *KindMismatchError) Is(target error) bool {
	return target == ErrKindMismatch
}

// DuplicatePropertyError is returned by the ErrorOnDuplicates strategy.
type DuplicatePropertyError struct {
	Property string
}

func (e *DuplicatePropertyError) Error() string {
	return fmt.Sprintf("duplicate property found: %s", e.Property)
}

// ErrNotObject is matched by every NotObjectError.
var ErrNotObject = errors.New("cannot merge a schema that is not an object schema")

// NotObjectError occurs when a schema typed as something other than an object is merged.
type NotObjectError struct {
	Type string
}

func (e *NotObjectError) Error() string {
	return fmt.Sprintf("%s (type %s)", ErrNotObject, e.Type)
}

func (e *NotObjectError) Is(target error) bool {
	return target == ErrNotObject
}
