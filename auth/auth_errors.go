package auth

import "errors"

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong
	// password". The two cases are deliberately indistinguishable to the
	// caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenReuse is returned when a refresh token is presented after it
	// has been rotated or revoked. This is a possible-theft signal.
	ErrTokenReuse = errors.New("refresh token already used")

	// ErrConflict is returned when registration violates a uniqueness
	// constraint.
	ErrConflict = errors.New("already exists")

	// ErrNotFound is returned when the authenticated user or their
	// organization no longer exists or is inactive.
	ErrNotFound = errors.New("not found")
)
