package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"guard-bot/internal/pattern"
)

func (h *Handler) patternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the detection rules and their weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := h.buildEngine()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enabled := h.cfg.EnabledCategories()
			weights := h.cfg.WeightTable()

			types := make([]pattern.Type, len(pattern.AllTypes))
			copy(types, pattern.AllTypes)
			sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

			for _, t := range types {
				w := weights[t]
				state := "enabled"
				if !enabled[t] {
					state = "disabled"
				}
				fmt.Fprintf(out, "%s (%s)\n", t, state)
				fmt.Fprintf(out, "  weights: perf=%.0f sec=%.0f maint=%.0f debug_hours=%.1f\n",
					w.Performance, w.Security, w.Maintainability, w.DebugHours)

				for _, rule := range eng.Lexical().Rules() {
					if rule.Category != t {
						continue
					}
					fmt.Fprintf(out, "  [%s %.2f] %s\n", rule.Severity, rule.Confidence, rule.Description)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
