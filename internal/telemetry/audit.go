package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditKind is the lifecycle event being recorded.
type AuditKind string

const (
	AuditCreate AuditKind = "CREATE"
	AuditDelete AuditKind = "DELETE"
)

// Auditable is an entity that can be written to the audit log.
type Auditable interface {
	AuditEntity() string
	AuditID() string
	AuditText() string
}

type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	now         func() time.Time
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level    string `json:"level"`
	Text     string `json:"text"`
	Action   string `json:"action,omitempty"`
	Entity   string `json:"entity,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		now:         time.Now,
	}
}

// Record publishes an entity lifecycle event on behalf of actorID.
// Publish failures are logged and dropped.
func (e *AuditEmitter) Record(ctx context.Context, entity Auditable, kind AuditKind, actorID string) {
	if e == nil || e.publisher == nil {
		return
	}

	var userID *string
	if actorID != "" {
		userID = &actorID
	}
	e.publish(ctx, userID, AuditPayload{
		Level:    "INFO",
		Text:     entity.AuditText(),
		Action:   string(kind),
		Entity:   entity.AuditEntity(),
		EntityID: entity.AuditID(),
	})
}

// Emit publishes a free-form audit line.
func (e *AuditEmitter) Emit(ctx context.Context, level, text string, userID *string) {
	if e == nil || e.publisher == nil {
		return
	}
	e.publish(ctx, userID, AuditPayload{Level: level, Text: text})
}

func (e *AuditEmitter) publish(ctx context.Context, userID *string, payload AuditPayload) {
	requestID := RequestIDFromContext(ctx)
	zap.L().Debug("audit emit",
		zap.String("level", payload.Level),
		zap.String("action", payload.Action),
		zap.String("entity_id", payload.EntityID),
		zap.String("request_id", requestID),
	)

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		zap.L().Warn("audit publish failed", zap.Error(err), zap.String("request_id", requestID))
	}
}
