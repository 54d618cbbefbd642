package mcp

import (
	"context"
	"log"
	"net/http"

	"guard-bot/internal/config"
	"guard-bot/internal/engine"
	"guard-bot/internal/history"
	"guard-bot/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// GuardServer exposes the alarm-silencing analysis as an MCP tool so coding
// agents can check a change before writing it
type GuardServer struct {
	server  *mcp.Server
	engine  *engine.Engine
	history *history.Writer
	config  *config.Config
	logger  *zap.Logger
	handler *mcp.StreamableHTTPHandler
}

type AnalyzeChangeParams struct {
	Code     string `json:"code" jsonschema:"the proposed source code change to analyze"`
	Action   string `json:"action,omitempty" jsonschema:"the tool action producing this change, e.g. Write or Edit"`
	FilePath string `json:"file_path,omitempty" jsonschema:"target file path, used to pick the language"`
}

func NewGuardServer(eng *engine.Engine, hist *history.Writer, cfg *config.Config, logger *zap.Logger) *GuardServer {
	server := &GuardServer{
		engine:  eng,
		history: hist,
		config:  cfg,
		logger:  logger,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "GuardBot",
		Version: cfg.Agent.Version,
	}, nil)

	// Register the analyzeChange tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "analyzeChange",
		Description: "Analyze a proposed code change for alarm-silencing patterns (silenced exceptions, suppressed warnings, security shortcuts, skipped tests) and return an allow/warn/block verdict with an impact score and fix recommendations",
	}, server.handleAnalyzeChange)

	server.handler = mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	server.server = mcpServer
	return server
}

func (s *GuardServer) handleAnalyzeChange(ctx context.Context, req *mcp.CallToolRequest, args AnalyzeChangeParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling analyzeChange request",
		zap.String("action", args.Action),
		zap.Int("code_bytes", len(args.Code)))

	if args.Code == "" {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "No code provided to analyze."}},
		}, nil, nil
	}

	outcome := s.engine.Analyze(ctx, engine.Request{
		Code:     args.Code,
		Action:   args.Action,
		FilePath: args.FilePath,
	})
	s.history.Log(outcome)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: report.Render(outcome)}},
	}, outcome, nil
}

func (s *GuardServer) SetupHTTPRoutes(router *gin.Engine) {
	go func() {
		address := s.config.Server.GetMCPAddress()
		log.Printf("MCP Server going to listen on %s", address)
		if err := http.ListenAndServe(address, s.handler); err != nil {
			log.Fatalf("MCP Server failed: %v", err)
		}
	}()
}
