//go:build !windows

package platform

type unsupportedClipboard struct{}

// NewClipboard returns a clipboard that always fails with ErrUnsupported
func NewClipboard() Clipboard {
	return unsupportedClipboard{}
}

func (unsupportedClipboard) SetText(string) error {
	return ErrUnsupported
}
