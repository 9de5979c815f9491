package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType identifies an auditable event in the platform.
type EventType string

const (
	EventCreditGranted  EventType = "credit_granted"
	EventCreditRedeemed EventType = "credit_redeemed"
	EventCreditRefunded EventType = "credit_refunded"
	EventCreditExpired  EventType = "credit_expired"

	EventBookingCreated   EventType = "booking_created"
	EventBookingCancelled EventType = "booking_cancelled"
	EventBookingNoShow    EventType = "booking_no_show"

	EventMedicalReviewFlagged EventType = "medical_review_flagged"
	EventMedicalReviewCleared EventType = "medical_review_cleared"

	EventLoginFailed        EventType = "login_failed"
	EventLoginSuccess       EventType = "login_success"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventRateLimitTriggered EventType = "rate_limit_triggered"

	EventConfigUpdated EventType = "config_updated"

	EventLedgerAnchorCreated EventType = "ledger_anchor_created"
	EventLedgerChainBreak    EventType = "ledger_chain_break"
)

// Event is a structured audit record. Credit and booking events carry the
// affected user as subject; auth events carry a masked email or IP.
type Event struct {
	Timestamp    time.Time      `json:"timestamp"`
	Service      string         `json:"service"`
	Environment  string         `json:"env"`
	Level        string         `json:"level"`
	Event        EventType      `json:"event"`
	SubjectType  string         `json:"subject_type,omitempty"` // "user_id", "email", "ip"
	SubjectValue string         `json:"subject_value,omitempty"`
	IP           string         `json:"ip,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// Logger writes audit events as structured JSON via Zap.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *Logger

// Init builds the audit logger. Call once at startup.
func Init(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	l := &Logger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
	defaultLogger = l
	return l
}

// Default returns the process-wide audit logger, initializing a fallback
// instance if Init was never called.
func Default() *Logger {
	if defaultLogger == nil {
		return Init("studio-backend", "development")
	}
	return defaultLogger
}

// Log emits a single audit event.
func (l *Logger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = l.serviceName
	event.Environment = l.environment

	level := zapcore.InfoLevel
	switch event.Event {
	case EventLoginFailed, EventRateLimitTriggered, EventMedicalReviewFlagged:
		level = zapcore.WarnLevel
	case EventUnauthorizedAccess, EventLedgerChainBreak:
		level = zapcore.ErrorLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
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
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	l.zapLogger.Log(level, string(event.Event), fields...)
}

// LogCreditMovement records a ledger mutation with its amount and reference.
func (l *Logger) LogCreditMovement(ctx context.Context, event EventType, userID int64, amount int, reference string) {
	l.Log(ctx, Event{
		Event:        event,
		SubjectType:  "user_id",
		SubjectValue: HashID(userID),
		Details: map[string]any{
			"amount":    amount,
			"reference": reference,
		},
	})
}

// LogRateLimitTriggered records a rate-limited request.
func (l *Logger) LogRateLimitTriggered(ctx context.Context, ip, requestID, endpoint string) {
	l.Log(ctx, Event{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// MaskEmail masks an email for logging, e.g. "j***@example.com".
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashID hashes a numeric user ID so logs carry no raw identifiers.
func HashID(id int64) string {
	hash := sha256.Sum256([]byte(strconv.FormatInt(id, 10)))
	return hex.EncodeToString(hash[:8])
}
