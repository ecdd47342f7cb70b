package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	Service   string    // Service name (Read, Write, Browse, Publish, ...)
	ClientIP  string    // Client IP address (without port)
	ChannelID uint32    // Secure channel id
	SessionID string    // Session NodeId string form
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	out := *lc
	return &out
}

// WithService returns a copy with the service name set
func (lc *LogContext) WithService(service string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Service = service
	}
	return clone
}

// WithChannel returns a copy with the channel id set
func (lc *LogContext) WithChannel(channelID uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ChannelID = channelID
	}
	return clone
}

// WithSession returns a copy with the session id set
func (lc *LogContext) WithSession(sessionID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.SessionID = sessionID
	}
	return clone
}
