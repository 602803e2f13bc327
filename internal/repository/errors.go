// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrAlreadyDecided signals that an approve/decline raced with
// an earlier decision.
package repository

import "errors"

// ErrAlreadyDecided is returned when a conditional status update on a
// pending record affected no rows because the record was already
// approved or declined. Handlers should translate this into an
// HTTP 409 response.
var ErrAlreadyDecided = errors.New("already decided")

// ErrNotFound is returned when a referenced record does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
