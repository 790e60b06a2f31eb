// Package customerr holds the typed errors produced at store boundaries.
// Stores return them; callers decide user messaging.
package customerr

// ValidationError rejects input before any remote call is made.
type ValidationError struct {
	Field string
	Err   string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Field + ": " + e.Err
}

// AuthError means the identity was not found or the password did not match.
type AuthError struct {
	Err string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Err
}

// DuplicateError means signup hit an already-taken username.
type DuplicateError struct {
	Username string
}

func (e *DuplicateError) Error() string {
	return "duplicate identity: " + e.Username
}

// CreationError means the remote identity write failed.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return "create identity: " + e.Err.Error()
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// FetchError means a remote list call failed; local state is untouched.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "fetch entries: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WriteError means a remote create or update failed.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "write entry: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// DeleteError means the remote delete failed; the local record is kept.
type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string {
	return "delete entry " + e.ID + ": " + e.Err.Error()
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
