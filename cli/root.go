package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"markestedt/ahkgen/config"
	"markestedt/ahkgen/storage"
)

const version = "dev"

// LogLevel is raised to Debug by --verbose
var LogLevel = new(slog.LevelVar)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ahkgen",
	Short: "Compose UI-automation sequences and export them as AutoHotkey scripts",
	Long: `AHKGen binds an ordered list of actions (button clicks, cut/paste,
window switching, key sends) to a global hotkey and writes the result as an
AutoHotkey script. Run without a subcommand to start the tray agent and web builder.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func initConfig() {
	if verbose {
		LogLevel.Set(slog.LevelDebug)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the per-user ahkgen/config.toml)")
	addServeFlags(rootCmd)
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded", "path", cfg.Path())
	return cfg, nil
}

// openHistory opens the export database next to the config file
func openHistory(cfg *config.Config) (*storage.DB, error) {
	db, err := storage.Open(filepath.Dir(cfg.Path()))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return db, nil
}

// printJson prints data as indented JSON
func printJson(cmd *cobra.Command, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}
