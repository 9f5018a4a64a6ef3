package script

// Hotkeys are the global hotkeys a generated script can be bound to
var Hotkeys = []string{
	"#+F1", "#+F2", "#+F3", "#+F4", "#+F5", // Win+Shift+F1-F5
	"^!1", "^!2", "^!3", "^!4", "^!5", // Ctrl+Alt+1-5
	"#1", "#2", "#3", "#4", "#5", // Win+1-5
}

// DefaultHotkey is preselected in the builder
const DefaultHotkey = "#+F1"

// IsKnownHotkey reports whether hk is one of the selectable hotkeys
func IsKnownHotkey(hk string) bool {
	for _, h := range Hotkeys {
		if h == hk {
			return true
		}
	}
	return false
}
