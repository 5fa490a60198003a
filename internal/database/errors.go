package database

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName rejects names that cannot serve as identity keys.
	ErrInvalidName = errors.New("invalid name")

	// ErrUnknownIdentity reports a verification against a name that is not
	// enrolled.
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrCorruptDatabase reports a structurally invalid database file.
	// Loading never yields a partially populated database.
	ErrCorruptDatabase = errors.New("corrupt database")

	// ErrPersistence reports a failed save. The previous on-disk state is
	// left untouched.
	ErrPersistence = errors.New("persistence failure")
)

// ErrDimensionMismatch reports an encoding whose length differs from the
// dimensionality the database was established with. Dimensions are never
// silently coerced.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// IsDimensionMismatch reports whether err is a dimension mismatch.
func IsDimensionMismatch(err error) bool {
	var dm *ErrDimensionMismatch
	return errors.As(err, &dm)
}
