package systray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/getlantern/systray"
)

// GenerateFunc exports the current sequence and returns the written path
type GenerateFunc func() (string, error)

// SystrayManager manages the system tray icon and menu
type SystrayManager struct {
	builderURL string
	iconData   []byte
	generate   GenerateFunc
	quit       chan struct{}
	ready      chan struct{}
}

// NewSystrayManager creates a new systray manager. builderURL may be empty
// when the web builder is disabled.
func NewSystrayManager(builderURL string, iconData []byte, generate GenerateFunc) *SystrayManager {
	return &SystrayManager{
		builderURL: builderURL,
		iconData:   iconData,
		generate:   generate,
		quit:       make(chan struct{}),
		ready:      make(chan struct{}),
	}
}

// Run starts the system tray (blocking call)
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop quits the tray once Run has shown it. A Quit issued before that
// point would leave Run blocked.
func (m *SystrayManager) Stop() {
	<-m.ready
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

func (m *SystrayManager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	systray.SetTitle("AHKGen")
	systray.SetTooltip("AHKGen - AutoHotkey Script Generator")

	mOpen := systray.AddMenuItem("Open Builder", "Open the sequence builder in a browser")
	if m.builderURL == "" {
		mOpen.Disable()
	}
	mGenerate := systray.AddMenuItem("Generate Script", "Export the current sequence")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit AHKGen")
	close(m.ready)

	go func() {
		for {
			select {
			case <-mOpen.ClickedCh:
				m.openBuilder()
			case <-mGenerate.ClickedCh:
				m.runGenerate()
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

func (m *SystrayManager) runGenerate() {
	if m.generate == nil {
		return
	}

	path, err := m.generate()
	if err != nil {
		slog.Warn("Tray generate failed", "error", err)
		systray.SetTooltip(fmt.Sprintf("AHKGen - %v", err))
		return
	}
	systray.SetTooltip("AHKGen - wrote " + path)
}

// openBuilder opens the builder in the default browser
func (m *SystrayManager) openBuilder() {
	slog.Info("Opening builder", "url", m.builderURL)

	if err := OpenBrowser(m.builderURL); err != nil {
		slog.Error("Failed to open builder", "error", err)
	}
}

// OpenBrowser opens url with the platform's default handler
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return fmt.Errorf("unsupported platform for opening browser: %s", runtime.GOOS)
	}

	return cmd.Start()
}
