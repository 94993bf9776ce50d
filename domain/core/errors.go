package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors: malformed or unusable input, fatal at the CLI boundary
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyTable        = fmt.Errorf("%w: table has no data rows", ErrInvalidInput)
	ErrMissingColumn     = fmt.Errorf("%w: required column missing", ErrInvalidInput)
	ErrUnterminatedQuote = fmt.Errorf("%w: unterminated quoted field", ErrInvalidInput)
	ErrBadTimestamp      = fmt.Errorf("%w: unparseable bucket timestamp", ErrInvalidInput)
	ErrUnsupportedFile   = fmt.Errorf("%w: unsupported file type", ErrInvalidInput)

	// Training errors
	ErrInsufficientData = errors.New("insufficient data for training")

	// Numeric errors
	ErrEmptySample = errors.New("empty sample")
)

// NewMissingColumnError reports every absent required column at once.
func NewMissingColumnError(columns []string) error {
	return fmt.Errorf("%w: %v", ErrMissingColumn, columns)
}

// NewBadTimestampError carries the offending raw value and its row.
func NewBadTimestampError(raw string, row int) error {
	return fmt.Errorf("%w: %q at row %d", ErrBadTimestamp, raw, row)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
