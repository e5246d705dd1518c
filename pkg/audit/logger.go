package audit

import "context"

// Logger is the interface for audit logging
type Logger interface {
	// Log logs an audit event
	Log(ctx context.Context, event *AuditEvent) error

	// Close closes the logger and flushes any buffered logs
	Close() error
}

// NoOpLogger discards every event
type NoOpLogger struct{}

func (NoOpLogger) Log(ctx context.Context, event *AuditEvent) error { return nil }
func (NoOpLogger) Close() error                                     { return nil }
