package gpu

import "errors"

var (
	ErrSurfaceOutdated       = errors.New("surface out of date")
	ErrSurfaceSuboptimal     = errors.New("surface suboptimal")
	ErrNoSuitableMemoryType  = errors.New("no suitable memory type")
	ErrUnsupportedTransition = errors.New("unsupported layout transition")
	ErrTimeout               = errors.New("timed out")
	ErrDeviceLost            = errors.New("device lost")
	ErrNoSuitableDevice      = errors.New("no suitable physical device")
	ErrMissingLayer          = errors.New("requested layer not present")
)

// OpError records which GPU operation failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
