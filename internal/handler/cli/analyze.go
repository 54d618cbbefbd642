package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"guard-bot/internal/engine"
	"guard-bot/internal/hook"
	"guard-bot/internal/report"
)

func (h *Handler) analyzeCmd() *cobra.Command {
	var (
		action   string
		filePath string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a file (or stdin) for alarm-silencing patterns",
		Long: "Runs the detection pipeline on the given file, or on stdin when no " +
			"file is given, and prints the verdict. Exits 2 when the change " +
			"would be blocked.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, path, err := readInput(args)
			if err != nil {
				return err
			}
			if filePath == "" {
				filePath = path
			}

			eng, err := h.buildEngine()
			if err != nil {
				return err
			}
			defer h.logger.Sync()

			outcome := eng.Analyze(cmd.Context(), engine.Request{
				Code:     code,
				Action:   action,
				FilePath: filePath,
			})
			h.historyWriter().Log(outcome)

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(outcome); err != nil {
					return err
				}
			case "text":
				fmt.Fprint(cmd.OutOrStdout(), report.Render(outcome))
			default:
				return fmt.Errorf("unknown format %q, want text or json", format)
			}

			if outcome.Blocked() {
				h.logger.Sync()
				os.Exit(hook.ExitBlock)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", "cli",
		"Tool action label recorded with the analysis")
	cmd.Flags().StringVar(&filePath, "file-path", "",
		"Override the path used for language detection")
	cmd.Flags().StringVarP(&format, "format", "f", "text",
		"Output format: text or json")

	return cmd
}

func readInput(args []string) (code string, path string, err error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "", nil
}
