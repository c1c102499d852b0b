package adapter

import "errors"

var (
	// ErrUnauthorized indicates the remote source rejected the client's
	// credentials.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrTableNotFound indicates the remote source does not serve the
	// requested table identifier.
	ErrTableNotFound = errors.New("remote table not found")
)
