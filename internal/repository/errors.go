// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current subject is not
// authorized to act on a record owned by someone else, while
// ErrInsufficientStock signals that a part attach asked for more units
// than the inventory row holds. Record-not-found conditions are
// reported as sql.ErrNoRows by the individual repositories.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// record they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when a customer or mechanic registration
// collides with an existing email address. Handlers should translate
// this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrPartNameExists is returned when an inventory part is created or
// renamed to a part name that is already taken (exact match). Handlers
// should translate this into an HTTP 409 response.
var ErrPartNameExists = errors.New("part name already exists")

// ErrPartNumberExists is returned when the optional part number
// collides with an existing row. HTTP 409.
var ErrPartNumberExists = errors.New("part number already exists")

// ErrInsufficientStock is returned when a part attach requests more
// units than are in stock. The enclosing transaction is rolled back so
// stock and ticket cost are left unchanged. HTTP 400.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidState is returned when an operation is disallowed by the
// ticket's current status, such as deleting a ticket that is
// in_progress or completed. HTTP 400.
var ErrInvalidState = errors.New("invalid ticket state")
