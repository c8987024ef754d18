package forms

import "errors"

// Sentinel errors for the forms pipeline. Repositories translate every
// low-level store failure into ErrOperationFailed after logging the
// original cause; the cause is never surfaced to callers.
var (
	ErrAlreadySubscribed = errors.New("email already subscribed")
	ErrOperationFailed   = errors.New("operation failed")
)
