package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"markestedt/ahkgen/script"
)

var translateCmd = &cobra.Command{
	Use:   "translate [combo]",
	Short: "Translate a key combination into AutoHotkey Send syntax",
	Long: `Converts a human-readable combination such as "control+s" into the
form used by Send ("^s"). Special keys: ` + strings.Join(script.SpecialKeyNames(), ", ") + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), script.Translate(args[0]))
		return nil
	},
}

var hotkeysCmd = &cobra.Command{
	Use:   "hotkeys",
	Short: "List the hotkeys a script can be bound to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, hk := range script.Hotkeys {
			fmt.Fprintln(cmd.OutOrStdout(), hk)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(hotkeysCmd)
}
