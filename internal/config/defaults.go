package config

import "guard-bot/internal/verdict"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:    "guard-bot",
			Version: "1.0.0",
		},
		Engine: EngineConfig{
			MaxLines: 2000,
			MinBytes: 20,
		},
		Thresholds: verdict.Thresholds{
			CriticalCount: 1,
			BlockScore:    80,
			WarnScore:     40,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "data/detection_history.jsonl",
		},
		Server: ServerConfig{
			Port:    8080,
			MCPPort: 8081,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
