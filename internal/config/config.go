// Package config defines the guard's YAML configuration: engine limits,
// per-category detector settings, gate thresholds, the weight table, and
// server/history/logging settings.
package config

import (
	"fmt"

	"guard-bot/internal/pattern"
	"guard-bot/internal/verdict"
)

// Config is the root configuration structure
type Config struct {
	Agent      AgentConfig               `yaml:"agent"`
	Engine     EngineConfig              `yaml:"engine"`
	Detectors  map[string]DetectorConfig `yaml:"detectors"`
	Thresholds verdict.Thresholds        `yaml:"thresholds"`
	Weights    map[string]pattern.Weight `yaml:"weights"`
	History    HistoryConfig             `yaml:"history"`
	Server     ServerConfig              `yaml:"server"`
	Logging    LoggingConfig             `yaml:"logging"`
}

// AgentConfig contains agent metadata
type AgentConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// EngineConfig contains analysis limits
type EngineConfig struct {
	// MaxLines rejects oversized inputs before scanning; generated files
	// can be enormous and scanning time must stay bounded.
	MaxLines int `yaml:"max_lines"`
	// MinBytes skips trivial inputs in the hook wrapper
	MinBytes int `yaml:"min_bytes"`
}

// DetectorConfig contains per-category settings
type DetectorConfig struct {
	// Enabled defaults to true when omitted
	Enabled *bool `yaml:"enabled"`
	// Severity overrides the detection severity for this category
	Severity string `yaml:"severity"`
}

// HistoryConfig contains the JSONL detection-history settings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig contains HTTP and MCP server settings
type ServerConfig struct {
	Port    int `yaml:"port"`
	MCPPort int `yaml:"mcp_port"`
}

// GetMCPAddress returns the listen address for the MCP server
func (s ServerConfig) GetMCPAddress() string {
	return fmt.Sprintf(":%d", s.MCPPort)
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// EnabledCategories resolves the per-category enabled flags. Categories
// absent from the config are enabled.
func (c *Config) EnabledCategories() map[pattern.Type]bool {
	enabled := make(map[pattern.Type]bool, len(pattern.AllTypes))
	for _, t := range pattern.AllTypes {
		enabled[t] = true
	}
	for name, det := range c.Detectors {
		if det.Enabled != nil {
			enabled[pattern.Type(name)] = *det.Enabled
		}
	}
	return enabled
}

// SeverityOverrides resolves the per-category severity overrides
func (c *Config) SeverityOverrides() map[pattern.Type]pattern.Severity {
	overrides := make(map[pattern.Type]pattern.Severity)
	for name, det := range c.Detectors {
		if det.Severity != "" {
			overrides[pattern.Type(name)] = pattern.Severity(det.Severity)
		}
	}
	return overrides
}

// WeightTable merges configured weight entries over the defaults
func (c *Config) WeightTable() pattern.WeightTable {
	table := pattern.DefaultWeights()
	for name, weight := range c.Weights {
		table[pattern.Type(name)] = weight
	}
	return table
}

// Validate checks the configuration at startup. Unknown categories and
// out-of-range values fail here rather than defaulting silently at runtime.
func (c *Config) Validate() error {
	if c.Engine.MaxLines <= 0 {
		return fmt.Errorf("engine.max_lines must be positive, got %d", c.Engine.MaxLines)
	}
	if c.Engine.MinBytes < 0 {
		return fmt.Errorf("engine.min_bytes must not be negative, got %d", c.Engine.MinBytes)
	}

	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	for name, det := range c.Detectors {
		if !pattern.Type(name).Valid() {
			return fmt.Errorf("detectors: unknown pattern category %q", name)
		}
		if det.Severity != "" && !pattern.Severity(det.Severity).Valid() {
			return fmt.Errorf("detectors.%s: unknown severity %q", name, det.Severity)
		}
	}

	for name := range c.Weights {
		if !pattern.Type(name).Valid() {
			return fmt.Errorf("weights: unknown pattern category %q", name)
		}
	}
	if err := c.WeightTable().Validate(); err != nil {
		return err
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	return nil
}
