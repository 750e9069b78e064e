package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	IPAddress     string
	UserAgent     string
	Path          string
	Success       bool
	FailureReason string
}

// AuditLogger writes audit records for admin access and complaint changes.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAdminAuth records an attempt to use an admin route.
func (al *AuditLogger) LogAdminAuth(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "admin_auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogStatusChange records an admin moving a complaint to a new status.
func (al *AuditLogger) LogStatusChange(complaintID int64, newStatus, ipAddress string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "complaint"),
		slog.String("event_type", "status_change"),
		slog.Int64("complaint_id", complaintID),
		slog.String("new_status", newStatus),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if ipAddress != "" {
		attrs = append(attrs, slog.String("ip_address", ipAddress))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
