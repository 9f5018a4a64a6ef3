package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently exported scripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			return fmt.Errorf("history is disabled in %s", cfg.Path())
		}

		db, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		exports, err := db.GetExports(historyLimit, 0)
		if err != nil {
			return err
		}
		return printJson(cmd, exports)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of exports to show")
	rootCmd.AddCommand(historyCmd)
}
