package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRunID identifies one ingestion run.
	FieldRunID = "run_id"
	// FieldJobID identifies a job record.
	FieldJobID = "job_id"
	// FieldCommand is the CLI command that produced the entry.
	FieldCommand = "command"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ForCommand tags every entry with the command name.
func ForCommand(logger *zap.Logger, command string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldCommand, Value: command})...)
}

// ForJob tags every entry with the job id.
func ForJob(logger *zap.Logger, jobID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldJobID, Value: jobID})...)
}
