package cli

var (
	verbose    bool
	configPath string

	// for serve
	noTray      bool
	openBuilder bool

	// for generate
	generateHotkey      string
	generateActions     []string
	generateOutput      string
	generateWindowTitle string
	generateNoHistory   bool

	// for history
	historyLimit int
)
