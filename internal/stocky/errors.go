package stocky

import "fmt"

// MissingColumnError reports a canonical input field for which no header
// alias matched. It is a validation failure (exit code 1).
type MissingColumnError struct {
	// Canonical is the canonical field name that could not be resolved.
	Canonical string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Canonical)
}

// TypeCoercionError reports a non-numeric value in a numeric column. It is a
// validation failure (exit code 1).
type TypeCoercionError struct {
	// Column is the canonical column name.
	Column string

	// Row is the zero-based data row index (header excluded).
	Row int

	// Value is the offending raw value.
	Value string
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("column %q, row %d: cannot coerce %q to a number", e.Column, e.Row, e.Value)
}
