package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security-relevant auth event
type AuditEvent struct {
	EventType     string
	TrainerID     int64
	Email         string
	Success       bool
	FailureReason string
}

// AuditLogger emits structured audit records for authentication flows.
// Events are logged, not persisted.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt logs login attempts and their outcome
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.TrainerID != 0 {
		attrs = append(attrs, slog.Int64("trainer_id", event.TrainerID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogPasswordChange logs permanent-password set and forgot-password resets
func (al *AuditLogger) LogPasswordChange(eventType string, trainerID int64, success bool) {
	attrs := []slog.Attr{
		slog.String("audit_type", "password"),
		slog.String("event_type", eventType),
		slog.Bool("success", success),
		slog.Int64("trainer_id", trainerID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
