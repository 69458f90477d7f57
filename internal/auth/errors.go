package auth

import "errors"

var (
	// ErrNotAuthenticated means no usable credential exists; the user has to
	// run `orbiter login` or `orbiter auth`.
	ErrNotAuthenticated = errors.New("not authenticated: run 'orbiter login' or 'orbiter auth --key <key>'")
	ErrInvalidKey       = errors.New("invalid key")
	ErrLoginTimeout     = errors.New("timed out waiting for login callback")
	ErrLoginFailed      = errors.New("login failed")
	ErrProviderRejected = errors.New("auth provider rejected the request")
)
