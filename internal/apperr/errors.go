// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

var (
	// ErrNotFound means the resource id does not resolve for any owner.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is authenticated but not the owner.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated means no active session was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotApproved means the account exists but has not been approved yet.
	ErrNotApproved = errors.New("not approved")
	// ErrValidation means the request carried an invalid or unusable value.
	ErrValidation = errors.New("validation failed")
)
