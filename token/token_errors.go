package token

import "errors"

var (
	// ErrTokenExpired is returned when a token's signature is valid but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for any other verification failure: bad
	// signature, wrong signing method, or a malformed token.
	ErrTokenInvalid = errors.New("token invalid")
)
