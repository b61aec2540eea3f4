package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no player record matches the id.
	ErrNotFound = errors.New("player record not found")
	// ErrSchema means a required field is missing or malformed in the
	// store. The operator must provision the field.
	ErrSchema = errors.New("player record schema error")
	// ErrWriteFailure marks a write that failed partway through a logical
	// operation. It is never retried automatically.
	ErrWriteFailure = errors.New("write failure")
)

// SchemaError names the field that failed to read.
type SchemaError struct {
	Field  Field
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("field %q: %s (provision the %q column on the players table)", e.Field, e.Reason, e.Field)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// WriteError reports which guarded operation failed, on which field, and
// whether the claim guard had already been committed. An operator uses
// GuardCommitted to decide whether a payout must be reconciled by hand.
type WriteError struct {
	Op             string
	Field          Field
	GuardCommitted bool
	Err            error
}

func (e *WriteError) Error() string {
	state := "guard not committed"
	if e.GuardCommitted {
		state = "guard committed, payout incomplete"
	}
	return fmt.Sprintf("%s: write %s failed (%s): %v", e.Op, e.Field, state, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWriteFailure, e.Err} }
