package script

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrEmptySequence = errors.New("no actions in sequence")

const (
	// DefaultWindowTitle is the window the script activates before running its actions
	DefaultWindowTitle = "KoboldAI"
	// DefaultOutputPath is the file name the script is exported to
	DefaultOutputPath = "script.ahk"

	actionIndent = "        "
)

type buildOptions struct {
	windowTitle string
}

// BuildOption customizes Build and Export
type BuildOption func(*buildOptions)

// WithWindowTitle sets the window title matched by WinExist
func WithWindowTitle(title string) BuildOption {
	return func(o *buildOptions) {
		if title != "" {
			o.windowTitle = title
		}
	}
}

// Build renders the AutoHotkey script for hotkey and actions.
// An empty action list is rejected with ErrEmptySequence.
func Build(hotkey string, actions []Action, opts ...BuildOption) (string, error) {
	if len(actions) == 0 {
		return "", ErrEmptySequence
	}

	o := buildOptions{windowTitle: DefaultWindowTitle}
	for _, opt := range opts {
		opt(&o)
	}

	lines := []string{
		"#SingleInstance Force",
		"#NoEnv",
		"",
		hotkey + "::",
		"{",
		"    SetTitleMatchMode, 2",
		`    if WinExist("` + o.windowTitle + `")`,
		"    {",
		"        WinActivate",
	}

	for _, a := range actions {
		lines = append(lines, actionIndent+a.Line())
	}

	lines = append(lines,
		"    }",
		"    return",
		"}",
	)

	return strings.Join(lines, "\n"), nil
}

// Export builds the script and writes it to path. Nothing is written when
// the sequence is empty. Write failures are returned as-is; a partially
// written file is left in place.
func Export(path, hotkey string, actions []Action, opts ...BuildOption) (string, error) {
	text, err := Build(hotkey, actions, opts...)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = DefaultOutputPath
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to save script: %w", err)
	}

	return text, nil
}
