// Package cli wires the guard's commands: analyze, hook, serve, patterns,
// and version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"guard-bot/internal/config"
	"guard-bot/internal/engine"
	"guard-bot/internal/history"
)

// Handler handles CLI commands
type Handler struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	rootCmd    *cobra.Command
}

// New creates a new CLI handler
func New() *Handler {
	h := &Handler{}
	h.setupCommands()
	return h
}

func (h *Handler) setupCommands() {
	h.rootCmd = &cobra.Command{
		Use:   "guard-bot",
		Short: "Alarm-silencing change guard",
		Long:  "Inspects proposed code changes for patterns that silence alarms or bypass issues, and allows, warns, or blocks before the change lands",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return h.loadConfig()
		},
	}

	// Global flags
	h.rootCmd.PersistentFlags().StringVarP(&h.configPath, "config", "c", "",
		"Path to configuration file")

	// Add subcommands
	h.rootCmd.AddCommand(h.analyzeCmd())
	h.rootCmd.AddCommand(h.hookCmd())
	h.rootCmd.AddCommand(h.serveCmd())
	h.rootCmd.AddCommand(h.patternsCmd())
	h.rootCmd.AddCommand(h.versionCmd())
}

func (h *Handler) loadConfig() error {
	cfg, err := config.Load(h.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	h.cfg = cfg

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	h.logger = logger

	h.logger.Debug("Configuration loaded successfully",
		zap.String("log_level", cfg.Logging.Level))
	return nil
}

// loadConfigLenient loads configuration but falls back to the defaults on
// any failure. The hook command must never exit non-zero because of a broken
// config file; a bad configuration must not block tool use.
func (h *Handler) loadConfigLenient() error {
	err := h.loadConfig()
	if err == nil {
		return nil
	}

	h.cfg = config.DefaultConfig()
	logger, logErr := buildLogger(h.cfg.Logging)
	if logErr != nil {
		logger = zap.NewNop()
	}
	h.logger = logger
	h.logger.Warn("Configuration unavailable, using defaults", zap.Error(err))
	return nil
}

// buildLogger creates a zap logger writing to stderr so command output on
// stdout stays machine-readable
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	zapCfg.Level.SetLevel(level)

	return zapCfg.Build()
}

func (h *Handler) buildEngine() (*engine.Engine, error) {
	return engine.New(h.cfg, h.logger)
}

// historyWriter returns the configured detection-history writer, or nil
// when history is disabled
func (h *Handler) historyWriter() *history.Writer {
	if !h.cfg.History.Enabled {
		return nil
	}
	return history.NewWriter(h.cfg.History.Path, h.logger)
}

// Execute runs the CLI
func (h *Handler) Execute() error {
	return h.rootCmd.Execute()
}

// Run is the main entry point
func Run() {
	handler := New()
	if err := handler.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
