package breaker

import "errors"

// ErrOpen is returned by Execute when the breaker short-circuits a call
// without attempting the underlying operation.
var ErrOpen = errors.New("circuit breaker is open")
