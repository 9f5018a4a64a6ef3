package script

import (
	"strings"
)

// modifierSymbols maps modifier aliases to their AutoHotkey prefix symbol
var modifierSymbols = map[string]string{
	"ctrl":    "^",
	"control": "^",
	"shift":   "+",
	"alt":     "!",
	"win":     "#",
}

// namedKeys maps special key names to their bracketed AutoHotkey form
var namedKeys = map[string]string{
	"up":        "{Up}",
	"down":      "{Down}",
	"left":      "{Left}",
	"right":     "{Right}",
	"enter":     "{Enter}",
	"tab":       "{Tab}",
	"space":     "{Space}",
	"backspace": "{Backspace}",
	"delete":    "{Delete}",
	"esc":       "{Esc}",
	"escape":    "{Esc}",
}

// Translate converts a human-readable key combination like "control+s"
// into AutoHotkey Send syntax ("^s").
//
// Modifiers are emitted first as a block in input order, followed by every
// other token in input order. Unknown tokens pass through verbatim, so the
// result is not guaranteed to be meaningful to AutoHotkey.
func Translate(combo string) string {
	if combo == "" {
		return ""
	}

	var modifiers, keys strings.Builder
	for _, part := range strings.Split(combo, "+") {
		token := strings.ToLower(strings.TrimSpace(part))

		if sym, ok := modifierSymbols[token]; ok {
			modifiers.WriteString(sym)
			continue
		}
		if named, ok := namedKeys[token]; ok {
			keys.WriteString(named)
			continue
		}
		keys.WriteString(token)
	}

	return modifiers.String() + keys.String()
}

// SpecialKeyNames lists the named keys Translate brackets, for help text
func SpecialKeyNames() []string {
	return []string{"up", "down", "left", "right", "enter", "tab", "space", "backspace", "delete", "esc"}
}
