package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParameterRequired = errors.New("parameter required for this action type")
	ErrUnknownActionType = errors.New("unknown action type")
)

// ActionType identifies one kind of step in an automation sequence
type ActionType int

const (
	ClickButton ActionType = iota + 1
	CutText
	PasteText
	SwitchWindow
	SendKeys
)

var actionTypeNames = map[ActionType]struct {
	id    string
	label string
}{
	ClickButton:  {"click_button", "Click Button"},
	CutText:      {"cut_text", "Cut Text"},
	PasteText:    {"paste_text", "Paste Text"},
	SwitchWindow: {"switch_window", "Switch Window"},
	SendKeys:     {"send_keys", "Send Keys"},
}

// ActionTypes returns every action type in display order
func ActionTypes() []ActionType {
	return []ActionType{ClickButton, CutText, PasteText, SwitchWindow, SendKeys}
}

// ParseActionType accepts either the display label ("Send Keys") or the
// identifier ("send_keys"), case-insensitively
func ParseActionType(s string) (ActionType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, t := range ActionTypes() {
		names := actionTypeNames[t]
		if needle == names.id || needle == strings.ToLower(names.label) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownActionType, s)
}

// String returns the display label
func (t ActionType) String() string {
	if names, ok := actionTypeNames[t]; ok {
		return names.label
	}
	return fmt.Sprintf("ActionType(%d)", int(t))
}

// ID returns the stable identifier used on the wire
func (t ActionType) ID() string {
	return actionTypeNames[t].id
}

// NeedsParameter reports whether the type carries a parameter
func (t ActionType) NeedsParameter() bool {
	return t != CutText && t != PasteText
}

// ParameterLabel is the form label shown next to the parameter field
func (t ActionType) ParameterLabel() string {
	switch t {
	case SendKeys:
		return "Key Combination:"
	case ClickButton, SwitchWindow:
		return "Button/Window Name:"
	default:
		return ""
	}
}

// ParameterHint is the help text shown under the parameter field
func (t ActionType) ParameterHint() string {
	if t == SendKeys {
		return "Example: control+s, shift+tab, alt+f4\nSpecial keys: up, down, left, right, enter, tab, space, backspace, delete, esc"
	}
	return ""
}

func (t ActionType) MarshalText() ([]byte, error) {
	if _, ok := actionTypeNames[t]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownActionType, int(t))
	}
	return []byte(t.ID()), nil
}

func (t *ActionType) UnmarshalText(b []byte) error {
	parsed, err := ParseActionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Action is one step of a sequence. Values are immutable once built by NewAction.
type Action struct {
	typ       ActionType
	parameter string
}

// NewAction validates raw form input and builds an action. Send Keys
// parameters are stored in translated form.
func NewAction(t ActionType, raw string) (Action, error) {
	if _, ok := actionTypeNames[t]; !ok {
		return Action{}, fmt.Errorf("%w: %d", ErrUnknownActionType, int(t))
	}

	if !t.NeedsParameter() {
		return Action{typ: t}, nil
	}

	param := raw
	if t == SendKeys && param != "" {
		param = Translate(param)
	}
	if param == "" {
		return Action{}, fmt.Errorf("%w: %s", ErrParameterRequired, t)
	}

	return Action{typ: t, parameter: param}, nil
}

// Type returns the action type
func (a Action) Type() ActionType {
	return a.typ
}

// Parameter returns the stored parameter, empty for cut/paste
func (a Action) Parameter() string {
	return a.parameter
}

// String renders the action the way the sequence list shows it
func (a Action) String() string {
	if a.parameter != "" {
		return fmt.Sprintf("%s: %s", a.typ, a.parameter)
	}
	return a.typ.String()
}

// Line returns the script line emitted for this action, without indentation
func (a Action) Line() string {
	switch a.typ {
	case ClickButton:
		return "Click, " + a.parameter
	case CutText:
		return "Send, ^x"
	case PasteText:
		return "Send, ^v"
	case SwitchWindow:
		return "WinActivate, " + a.parameter
	case SendKeys:
		return "Send, " + a.parameter
	}
	return ""
}

type actionJSON struct {
	Type      ActionType `json:"type"`
	Label     string     `json:"label"`
	Parameter string     `json:"parameter,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{
		Type:      a.typ,
		Label:     a.String(),
		Parameter: a.parameter,
	})
}
