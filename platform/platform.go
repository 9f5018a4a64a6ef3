package platform

import (
	"errors"
)

// ErrUnsupported is returned by platform features unavailable on this OS
var ErrUnsupported = errors.New("not supported on this platform")

// Clipboard places generated scripts on the system clipboard
type Clipboard interface {
	SetText(text string) error
}
