package security

import "go.uber.org/zap/zapcore"

// Severity is derived from the EventType, never supplied by callers.
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

var EventSeverityMap = map[EventType]Severity{
	EventLoginSuccess:  SeverityINFO,
	EventTenantClaimed: SeverityINFO,

	EventServerError: SeverityMEDIUM,

	EventLoginFailed:        SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventTokenRefreshFailed: SeverityWARN,
	EventUnauthorizedAccess: SeverityWARN,

	EventLoginBlocked:    SeverityHIGH,
	EventBlockCreated:    SeverityHIGH,
	EventForbiddenAccess: SeverityHIGH,
}

// GetSeverity returns the severity for an event type, MEDIUM when unmapped.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

// Level maps a severity onto the zap level it is written at.
func (s Severity) Level() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH, SeverityCRITICAL:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
