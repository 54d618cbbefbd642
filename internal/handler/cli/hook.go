package cli

import (
	"os"

	"github.com/spf13/cobra"

	"guard-bot/internal/hook"
)

func (h *Handler) hookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Run as a pre-tool-use hook",
		Long: "Reads a tool-call payload from stdin, analyzes any code it " +
			"carries, and exits 0 to allow or 2 to block. The hook fails open: " +
			"malformed payloads, broken configuration, and engine failures " +
			"always allow.",
		// Overrides the root's config loading: a broken config file must
		// fall back to defaults here, not surface as a non-zero exit.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return h.loadConfigLenient()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := h.buildEngine()
			if err != nil {
				// Even a broken configuration must not block tool use.
				h.logger.Error("Hook engine unavailable, allowing")
				os.Exit(hook.ExitAllow)
			}
			defer h.logger.Sync()

			runner := hook.NewRunner(eng, h.historyWriter(), h.cfg.Engine.MinBytes, h.logger)
			code := runner.Run(cmd.Context(), os.Stdin, os.Stderr)
			h.logger.Sync()
			os.Exit(code)
			return nil
		},
	}
}
