package urlhandler

import (
	"errors"
)

// Sentinel errors for host list input and URL list output.
var (
	ErrInputFile  = errors.New("cannot read input file")
	ErrOutputFile = errors.New("cannot write output file")
	ErrNoBase     = errors.New("base URL is nil")
)

// ReferenceError reports a script source attribute that could not be resolved.
type ReferenceError struct {
	Reference string
	Base      string
	Err       error
}

func (e *ReferenceError) Error() string {
	return "cannot resolve reference '" + e.Reference + "' against '" + e.Base + "': " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ReferenceError) Unwrap() error {
	return e.Err
}
