package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guard-bot/internal/controller"
	"guard-bot/internal/handler"
	"guard-bot/pkg/mcp"
)

func (h *Handler) serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and MCP servers",
		Long: "Starts the REST API on the configured port and the MCP server " +
			"on its own port, both backed by one shared analysis engine.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				h.cfg.Server.Port = port
			}

			eng, err := h.buildEngine()
			if err != nil {
				return err
			}
			defer h.logger.Sync()

			hist := h.historyWriter()
			analysisController := controller.NewAnalysisController(eng, hist, h.logger)
			mcpServer := mcp.NewGuardServer(eng, hist, h.cfg, h.logger)

			router := handler.SetupRouter(analysisController, mcpServer, h.logger)

			address := fmt.Sprintf(":%d", h.cfg.Server.Port)
			h.logger.Info("Starting server",
				zap.String("address", address),
				zap.Int("mcp_port", h.cfg.Server.MCPPort))
			return router.Run(address)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0,
		"HTTP port (overrides configuration)")

	return cmd
}
