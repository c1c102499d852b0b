package cache

import "errors"

var (
	// ErrMalformedData indicates the payload handed to the codec is not
	// well-formed JSON and can neither be wrapped nor repaired.
	ErrMalformedData = errors.New("payload is not well-formed JSON")

	// ErrUnrecoverable indicates repair was skipped because the entry's data
	// is itself corrupted.
	ErrUnrecoverable = errors.New("entry is unrecoverably corrupted")

	// ErrRepairFailed indicates the entry still failed validation after its
	// checksum was recomputed; the repair is abandoned.
	ErrRepairFailed = errors.New("entry repair abandoned")
)
