package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"markestedt/ahkgen/config"
	"markestedt/ahkgen/platform"
	"markestedt/ahkgen/session"
	"markestedt/ahkgen/storage"
	"markestedt/ahkgen/systray"
	"markestedt/ahkgen/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tray agent and the web sequence builder",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noTray, "no-tray", false, "do not show a system tray icon")
	cmd.Flags().BoolVar(&openBuilder, "open", false, "open the builder in a browser on start")
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	agent, err := NewAgent(cfg)
	if err != nil {
		return err
	}
	defer agent.Close()

	return agent.Run(cmd.Context())
}

// Agent coordinates the builder session, web UI and tray
type Agent struct {
	cfg     *config.Config
	db      *storage.DB
	session *session.Session
	server  *web.Server
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config) (*Agent, error) {
	a := &Agent{cfg: cfg}

	opts := []session.Option{session.WithClipboard(platform.NewClipboard())}
	if cfg.History.Enabled {
		db, err := openHistory(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		opts = append(opts, session.WithHistory(db))
	}

	a.session = session.New(cfg, opts...)

	if cfg.Web.Enabled {
		a.server = web.NewServer(a.session, a.db, cfg.Web.Port)
	}

	return a, nil
}

// Run serves the builder until ctx is done or the user quits from the tray
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	builderURL := ""
	if a.server != nil {
		// bind first so a busy port fails before the tray exists
		ln, err := a.server.Listen()
		if err != nil {
			return err
		}
		builderURL = a.server.URL()
		go func() {
			errCh <- a.server.Serve(ctx, ln)
		}()
	}

	if openBuilder && builderURL != "" {
		if err := systray.OpenBrowser(builderURL); err != nil {
			slog.Warn("Failed to open builder", "error", err)
		}
	}

	slog.Info("AHKGen started", "builder", builderURL, "output", a.cfg.Script.OutputPath)

	if noTray {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		}
	}

	tray := systray.NewSystrayManager(builderURL, nil, func() (string, error) {
		export, err := a.session.Generate("", session.SourceTray)
		if err != nil {
			return "", err
		}
		return export.OutputPath, nil
	})

	go func() {
		select {
		case <-ctx.Done():
		case <-tray.WaitForQuit():
			cancel()
		case err := <-errCh:
			if err != nil {
				slog.Error("Web server stopped", "error", err)
			}
			cancel()
		}
		tray.Stop()
	}()

	// systray must own the calling goroutine
	tray.Run()
	return nil
}

// Close releases the history database
func (a *Agent) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}
	return nil
}
