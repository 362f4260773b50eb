package fetch

import "errors"

var (
	// ErrBadStatus is returned when the backend answers with a non-200
	// status code.
	ErrBadStatus = errors.New("fetch: unexpected backend status")
	// ErrBackend is returned when the backend answers 200 but reports an
	// error in the payload body.
	ErrBackend = errors.New("fetch: backend reported error")
)
