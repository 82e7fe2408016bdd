package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// LogEntry is the materialized form of one log line before formatting
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
}

// Formatter renders a LogEntry into bytes ready for the writer
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// ConsoleFormatter renders "TIME LEVEL message key=value ..." lines.
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format implements Formatter
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.config.EnableTimestamp {
		b.WriteString(entry.Timestamp.Format(f.config.TimeFormat))
		b.WriteString(" ")
	}

	b.WriteString(fmt.Sprintf("%-5s", entry.Level.String()))
	b.WriteString(" ")
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Fields[k]))
		}
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

// JSONFormatter renders one JSON object per line.
type JSONFormatter struct {
	config *Config
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

// Format implements Formatter
func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	payload := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		payload[k] = v
	}
	payload["level"] = entry.Level.String()
	payload["message"] = entry.Message
	if f.config.EnableTimestamp {
		payload["time"] = entry.Timestamp.Format(f.config.TimeFormat)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
