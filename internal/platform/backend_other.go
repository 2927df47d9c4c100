//go:build !linux && !windows && !darwin

package platform

import (
	"fmt"
	"runtime"
)

// Open fails: desktop automation has no backend on this operating system.
func Open(Options) (Backend, error) {
	return nil, fmt.Errorf("desktop automation on %s: %w", runtime.GOOS, ErrUnsupported)
}
