// Package repository defines the persistence contract of the contribution
// workflow and its implementations.  Sentinel error values are shared
// across implementations so that higher layers such as handlers can
// distinguish failure scenarios with errors.Is. For example, ErrConflict
// indicates that a proposed value duplicates an existing active record,
// while ErrForbidden signals a missing moderation permission.
package repository

import "errors"

// ErrNotFound is returned when a movie, user, contribution or field record
// cannot be found.  That includes a contribution that exists but is not owned
// by the caller, targets a different field kind, or is already resolved.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the acting user lacks the field kind's
// required permission and lacks the ALL wildcard. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state: a new payload whose duplicate-key matches an active
// record of the same movie and kind, overlapping update/delete targets, or
// a second change queued against a record that already carries one.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrBadRequest is returned when a create or update call supplies no add,
// update or delete items at all. Handlers should translate this into an
// HTTP 400 response.
var ErrBadRequest = errors.New("bad request")
