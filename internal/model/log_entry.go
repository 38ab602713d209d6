package model

import (
	"time"

	"github.com/google/uuid"
)

type LogLevel string

const (
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelAction LogLevel = "ACTION"
)

// LogEntry represents one audit trail record
type LogEntry struct {
	ID        uuid.UUID  `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Level     LogLevel   `json:"level"`
	Module    string     `json:"module"`
	Message   string     `json:"message"`
	UserID    *uuid.UUID `json:"user_id"`
}
