package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"message-service/internal/models"
	"message-service/internal/observability"
	"message-service/internal/query"
	"message-service/internal/telemetry"
)

// AuditRecorder receives message lifecycle events after they are persisted.
type AuditRecorder interface {
	Record(ctx context.Context, entity telemetry.Auditable, kind telemetry.AuditKind, actorID string)
}

// MessageRepository defines interactions for messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message, actorID string) (string, error)
	GetByID(ctx context.Context, id string) (models.Message, bool, error)
	Delete(ctx context.Context, id string, actorID string) error
	FindByCriteria(ctx context.Context, criteria query.Criteria, sort *query.Sort) ([]models.ThreadEntry, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db    *sqlx.DB
	audit AuditRecorder
	now   func() time.Time
	newID func() string
}

// NewMessageRepo constructs MessageRepo. audit may be nil.
func NewMessageRepo(db *sqlx.DB, audit AuditRecorder) *MessageRepo {
	return &MessageRepo{
		db:    db,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

const selectMessage = `SELECT id, content, type, target_id, sender_id, created_at, deleted_at FROM messages WHERE id = ?`

var tracer = otel.Tracer("message-service/repositories")

// Create assigns an id and creation time to msg, stores it and records a CREATE event.
func (r *MessageRepo) Create(ctx context.Context, msg *models.Message, actorID string) (string, error) {
	msg.ID = r.newID()
	msg.CreatedAt = r.now()
	msg.DeletedAt = nil

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO messages (id, content, type, target_id, sender_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		msg.ID, msg.Content, string(msg.Type), msg.TargetID, msg.SenderID, msg.CreatedAt)
	observability.ObserveStoreOp("create", err)
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}

	r.record(ctx, *msg, telemetry.AuditCreate, actorID)
	return msg.ID, nil
}

// GetByID returns the message with id, deleted or not. found is false when no row exists.
func (r *MessageRepo) GetByID(ctx context.Context, id string) (models.Message, bool, error) {
	msg, found, err := getMessage(ctx, r.db, id)
	observability.ObserveStoreOp("get", err)
	return msg, found, err
}

// Delete tombstones the message. A missing or already deleted id is not an error and
// records nothing.
// The caller is responsible for authorizing actorID.
func (r *MessageRepo) Delete(ctx context.Context, id string, actorID string) (err error) {
	defer func() { observability.ObserveStoreOp("delete", err) }()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	msg, found, err := getMessage(ctx, tx, id)
	if err != nil {
		return err
	}
	if !found || msg.IsDeleted() {
		return tx.Commit()
	}

	now := r.now()
	if _, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE messages SET deleted_at = ? WHERE id = ?`), now, id); err != nil {
		return fmt.Errorf("soft delete message: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	msg.DeletedAt = &now
	r.record(ctx, msg, telemetry.AuditDelete, actorID)
	return nil
}

// FindByCriteria returns live thread entries matching criteria, ordered by sort
// or by creation time ascending when sort is nil.
func (r *MessageRepo) FindByCriteria(ctx context.Context, criteria query.Criteria, sort *query.Sort) ([]models.ThreadEntry, error) {
	spec := query.Build(criteria, sort)

	ctx, span := tracer.Start(ctx, "messages.find_by_criteria", trace.WithAttributes(
		attribute.String("query.mode", spec.Mode.String()),
		attribute.Int("query.clauses", len(spec.Clauses)),
	))
	defer span.End()

	q, args, err := spec.ToSQL()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	entries := []models.ThreadEntry{}
	err = r.db.SelectContext(ctx, &entries, r.db.Rebind(q), args...)
	observability.ObserveStoreOp("find", err)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find messages: %w", err)
	}
	span.SetAttributes(attribute.Int("query.rows", len(entries)))
	return entries, nil
}

func (r *MessageRepo) record(ctx context.Context, msg models.Message, kind telemetry.AuditKind, actorID string) {
	if r.audit == nil {
		zap.L().Debug("audit recorder not configured", zap.String("message_id", msg.ID), zap.String("action", string(kind)))
		return
	}
	r.audit.Record(ctx, msg, kind, actorID)
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func getMessage(ctx context.Context, q queryer, id string) (models.Message, bool, error) {
	var msg models.Message
	err := q.GetContext(ctx, &msg, q.Rebind(selectMessage), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, false, nil
	}
	if err != nil {
		return models.Message{}, false, fmt.Errorf("get message: %w", err)
	}
	return msg, true, nil
}
