//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	kernel32         = windows.NewLazySystemDLL("kernel32.dll")
	openClipboard    = user32.NewProc("OpenClipboard")
	closeClipboard   = user32.NewProc("CloseClipboard")
	emptyClipboard   = user32.NewProc("EmptyClipboard")
	setClipboardData = user32.NewProc("SetClipboardData")
	globalAlloc      = kernel32.NewProc("GlobalAlloc")
	globalFree       = kernel32.NewProc("GlobalFree")
	globalLock       = kernel32.NewProc("GlobalLock")
	globalUnlock     = kernel32.NewProc("GlobalUnlock")
)

const (
	cfUnicodeText = 13
	gmemMoveable  = 0x0002

	openAttempts = 10
)

type windowsClipboard struct{}

// NewClipboard creates a Win32 clipboard writer
func NewClipboard() Clipboard {
	return windowsClipboard{}
}

// SetText replaces the clipboard contents with text as CF_UNICODETEXT
func (c windowsClipboard) SetText(text string) error {
	utf16, err := windows.UTF16FromString(text)
	if err != nil {
		return fmt.Errorf("UTF16 conversion failed: %w", err)
	}

	if err := c.open(); err != nil {
		return err
	}
	defer closeClipboard.Call()

	emptyClipboard.Call()

	h, _, err := globalAlloc.Call(gmemMoveable, uintptr(len(utf16)*2))
	if h == 0 {
		return fmt.Errorf("GlobalAlloc failed: %w", err)
	}

	l, _, err := globalLock.Call(h)
	if l == 0 {
		globalFree.Call(h)
		return fmt.Errorf("GlobalLock failed: %w", err)
	}
	copy(unsafe.Slice((*uint16)(unsafe.Pointer(l)), len(utf16)), utf16)
	globalUnlock.Call(h)

	// on success the system owns h
	if r, _, err := setClipboardData.Call(cfUnicodeText, h); r == 0 {
		globalFree.Call(h)
		return fmt.Errorf("SetClipboardData failed: %w", err)
	}

	return nil
}

// open retries because another process may briefly hold the clipboard
func (c windowsClipboard) open() error {
	for i := 0; i < openAttempts; i++ {
		if r, _, _ := openClipboard.Call(0); r != 0 {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("failed to open clipboard after %d attempts", openAttempts)
}
