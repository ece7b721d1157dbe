package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. It deliberately covers
	// unknown email, wrong password and role-less accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable indicates the backing store could not be reached.
	// Callers must surface this as a service failure, never as a deny.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
)
