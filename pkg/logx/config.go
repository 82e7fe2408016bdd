package logx

import (
	"os"
	"strings"
	"time"
)

// Format represents the output format
type Format string

const (
	// FormatConsole outputs human-readable console logs (default)
	FormatConsole Format = "console"
	// FormatJSON outputs JSON formatted logs
	FormatJSON Format = "json"
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format
	Format Format

	// EnableTimestamp adds a timestamp to every line
	EnableTimestamp bool

	// TimeFormat is the time layout to use (defaults to RFC3339)
	TimeFormat string

	// Output is where to write logs (defaults to os.Stdout)
	Output *os.File
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Format:          FormatConsole,
		EnableTimestamp: true,
		TimeFormat:      time.RFC3339,
		Output:          os.Stdout,
	}
}

// LoadFromEnv loads configuration from LOG_LEVEL and LOG_FORMAT
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		switch strings.ToLower(format) {
		case "json":
			config.Format = FormatJSON
		case "console":
			config.Format = FormatConsole
		}
	}

	return config
}
