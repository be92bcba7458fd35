package store

import "errors"

// ErrNotFound is returned when a record does not exist. Owner-scoped task
// lookups also return it for tasks owned by somebody else, so callers can
// never learn whether a foreign task id exists.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// such as two users claiming the same email address.
var ErrConflict = errors.New("conflict")
