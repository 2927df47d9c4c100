package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed or missing caller input. It is
	// always returned before any side effect happens.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a handle that no longer refers to a live window.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported marks an operation the current platform cannot perform.
	ErrUnsupported = errors.New("not supported on this platform")
)

// Error kinds reported to tool callers.
const (
	KindInvalidArgument    = "invalid_argument"
	KindPlatformCallFailed = "platform_call_failed"
	KindNotFound           = "not_found"
	KindInternal           = "internal"
)

// PlatformCallError reports a failed OS call with its native error code.
type PlatformCallError struct {
	Op   string
	Code uint32
	Err  error
}

func (e *PlatformCallError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s failed (code %d)", e.Op, e.Code)
	}
	return fmt.Sprintf("%s failed (code %d): %v", e.Op, e.Code, e.Err)
}

func (e *PlatformCallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CallFailed builds a PlatformCallError for op.
func CallFailed(op string, code uint32, err error) error {
	return &PlatformCallError{Op: op, Code: code, Err: err}
}

// InvalidArgumentf returns an error wrapping ErrInvalidArgument.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFoundf returns an error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Kind classifies err into one of the Kind* constants. NotFound wins over
// PlatformCallFailed when a platform call reports a stale handle.
func Kind(err error) string {
	var pce *PlatformCallError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &pce):
		return KindPlatformCallFailed
	default:
		return KindInternal
	}
}
