package plex

import "errors"

var (
	// ErrUnauthorized is returned when the server rejects the stored token.
	ErrUnauthorized = errors.New("plex token rejected")

	// ErrAuthFailed is returned when plex.tv refuses the account credentials.
	ErrAuthFailed = errors.New("plex.tv sign-in failed")

	// ErrNoServer is returned when no configured or discovered server answers.
	ErrNoServer = errors.New("no reachable plex server")
)
