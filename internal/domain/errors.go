package domain

import "errors"

// Sentinel storage errors. Repositories translate driver-level failures into
// these so the service layer never inspects pgx internals.
var (
	// ErrNotFound signals an absent record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a uniqueness violation on insert or update.
	ErrConflict = errors.New("record already exists")
)
