package storage

import "errors"

// Journal and metrics stores are append-only: a record is written once per
// key and never updated.
var (
	// ErrNotFound is returned when a requested run, trade or metrics row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a key was already written.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned for nil records, empty keys and rows the
	// backing store rejects by constraint.
	ErrInvalidInput = errors.New("invalid input")
)
