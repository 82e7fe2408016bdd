package logx

import (
	"strings"
)

// Level orders log severities. Lower values are more verbose; a logger
// emits only records at or above its configured level.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	// LevelFatal logs and then exits the process.
	LevelFatal
	// LevelOff disables all output.
	LevelOff
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to its Level. Unrecognized input
// falls back to info rather than failing startup.
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Enabled reports whether records at target severity pass a logger
// configured at l.
func (l Level) Enabled(target Level) bool {
	return l <= target
}
