package core

import "github.com/google/uuid"

// RunID identifies a single training run.
type RunID string

// NewRunID generates a fresh random run identifier.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// String returns the string representation
func (id RunID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id RunID) IsEmpty() bool {
	return id == ""
}
