package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"markestedt/ahkgen/script"
	"markestedt/ahkgen/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Export a sequence given on the command line",
	Long: `Builds a sequence from repeated --action flags and writes the script.
Each action is "<type>" or "<type>=<parameter>", where type is a label such as
"Click Button" or an identifier such as click_button.`,
	Example: `  ahkgen generate --hotkey "#1" --action "Click Button=OK" --action "Cut Text" \
    --action "Switch Window=Notepad" --action "Paste Text" --action "Send Keys=control+s"`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateHotkey, "hotkey", "", "hotkey to bind (default from config)")
	generateCmd.Flags().StringArrayVarP(&generateActions, "action", "a", nil, "action to append, in order")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "script path (default from config)")
	generateCmd.Flags().StringVar(&generateWindowTitle, "window-title", "", "window the script activates (default from config)")
	generateCmd.Flags().BoolVar(&generateNoHistory, "no-history", false, "do not record this export")
	rootCmd.AddCommand(generateCmd)
}

// parseActionFlag splits "<type>=<parameter>" on the first '='
func parseActionFlag(s string) (script.ActionType, string, error) {
	name, param, _ := strings.Cut(s, "=")
	t, err := script.ParseActionType(name)
	if err != nil {
		return 0, "", err
	}
	return t, param, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if generateHotkey != "" && !script.IsKnownHotkey(generateHotkey) {
		return fmt.Errorf("unknown hotkey %q, see 'ahkgen hotkeys'", generateHotkey)
	}

	cfg = cfg.Clone()
	if generateOutput != "" {
		cfg.Script.OutputPath = generateOutput
	}
	if generateWindowTitle != "" {
		cfg.Script.WindowTitle = generateWindowTitle
	}

	var opts []session.Option
	if cfg.History.Enabled && !generateNoHistory {
		db, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, session.WithHistory(db))
	}

	sess := session.New(cfg, opts...)
	for i, raw := range generateActions {
		t, param, err := parseActionFlag(raw)
		if err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
		if _, err := sess.AddAction(t, param); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
	}

	export, err := sess.Generate(generateHotkey, session.SourceCLI)
	if err != nil {
		return err
	}

	return printJson(cmd, export)
}
