package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventLoginSuccess       EventType = "login_success"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventForbiddenAccess    EventType = "forbidden_access"
	EventTokenRefreshFailed EventType = "token_refresh_failed"
	EventTenantClaimed      EventType = "tenant_claimed"
	EventBlockCreated       EventType = "block_created"
	EventServerError        EventType = "server_error"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "ip", "user_id"
	SubjectValue string // masked or hashed
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]any
}

// SecurityLogger writes security events as structured zap entries.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultMu     sync.Mutex
	defaultLogger *SecurityLogger
)

// NewSecurityLogger wraps an existing zap logger.
func NewSecurityLogger(z *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{zapLogger: z, serviceName: serviceName, environment: environment}
}

// InitSecurityLogger builds a production zap logger on stdout and installs it as the default.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		logger = zap.NewNop()
	}

	sl := NewSecurityLogger(logger, serviceName, environment)
	SetDefault(sl)
	return sl
}

// SetDefault replaces the process-wide logger.
func SetDefault(sl *SecurityLogger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = sl
}

// DefaultLogger returns the installed logger, or a no-op one before Init.
func DefaultLogger() *SecurityLogger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewSecurityLogger(zap.NewNop(), "recruiting-platform", "development")
	}
	return defaultLogger
}

// Log logs a security event at the level derived from its severity.
func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	severity := GetSeverity(event.Event)
	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
		zap.Time("occurred_at", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(severity.Level(), string(event.Event), fields...)
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"reason": reason},
	})
}

func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"reason": "too_many_failed_attempts"},
	})
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, userID, ip, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginSuccess,
		SubjectType:  "user_id",
		SubjectValue: userID,
		IP:           ip,
		RequestID:    requestID,
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

// LogUnauthorizedAccess records a request rejected for a missing or invalid token.
func (sl *SecurityLogger) LogUnauthorizedAccess(ctx context.Context, ip, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventUnauthorizedAccess,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]any{"endpoint": endpoint},
	})
}

// LogForbiddenAccess records an authenticated caller denied by role or tenant scope.
func (sl *SecurityLogger) LogForbiddenAccess(ctx context.Context, userID, role, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventForbiddenAccess,
		SubjectType:  "user_id",
		SubjectValue: userID,
		RequestID:    requestID,
		Details:      map[string]any{"role": role, "endpoint": endpoint},
	})
}

func (sl *SecurityLogger) LogTokenRefreshFailed(ctx context.Context, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventTokenRefreshFailed,
		Details: map[string]any{"reason": reason},
	})
}

func (sl *SecurityLogger) LogTenantClaimed(ctx context.Context, userID, tenantID, slug string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventTenantClaimed,
		SubjectType:  "user_id",
		SubjectValue: userID,
		Details:      map[string]any{"tenant_id": tenantID, "slug": slug},
	})
}

func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, subjectType, subjectValue, ip, requestID string, durationMinutes int) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBlockCreated,
		SubjectType:  subjectType,
		SubjectValue: maskValue(subjectType, subjectValue),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"duration_minutes": durationMinutes},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***" + email[1:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue returns a short SHA-256 fingerprint of value.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip":
		return value
	default:
		return HashValue(value)
	}
}
