package core

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is matched by every EmptyDatasetError through errors.Is.
var ErrEmptyDataset = errors.New("empty dataset")

// EmptyDatasetError is returned when a ratio needs a positive whole-table
// denominator and the table (or the series) is empty.
type EmptyDatasetError struct {
	Operation string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, ErrEmptyDataset)
}

func (e *EmptyDatasetError) Is(target error) bool {
	return target == ErrEmptyDataset
}

// NewEmptyDatasetError builds the error for the named operation.
func NewEmptyDatasetError(operation string) error {
	return &EmptyDatasetError{Operation: operation}
}

// IsEmptyDataset reports whether err is (or wraps) an empty dataset error.
func IsEmptyDataset(err error) bool {
	return errors.Is(err, ErrEmptyDataset)
}
