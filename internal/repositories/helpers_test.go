package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"message-service/internal/db"
	"message-service/internal/telemetry"
)

type auditEvent struct {
	entityID string
	kind     telemetry.AuditKind
	actorID  string
}

type recordingAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (a *recordingAudit) Record(ctx context.Context, entity telemetry.Auditable, kind telemetry.AuditKind, actorID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, auditEvent{entityID: entity.AuditID(), kind: kind, actorID: actorID})
}

func (a *recordingAudit) snapshot() []auditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditEvent(nil), a.events...)
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	users := []struct{ id, username, email string }{
		{"u-alice", "alice", "alice@example.com"},
		{"u-bob", "bob", "bob@example.com"},
		{"u-carol", "carol", "carol@example.com"},
	}
	for _, u := range users {
		_, err := database.Exec(`INSERT INTO users (id, username, email) VALUES (?, ?, ?)`, u.id, u.username, u.email)
		require.NoError(t, err)
	}
	_, err = database.Exec(`INSERT INTO user_groups (id, name) VALUES (?, ?)`, "g-admins", "administrators")
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO auth_tokens (id, user_id, created_at) VALUES (?, ?, ?)`, "tok-alice", "u-alice", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return database
}

// newTestRepo returns a repo whose clock advances one second per call and whose ids
// are sequential.
func newTestRepo(t *testing.T) (*MessageRepo, *recordingAudit) {
	t.Helper()
	audit := &recordingAudit{}
	repo := NewMessageRepo(newTestDB(t), audit)

	var mu sync.Mutex
	clock := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	seq := 0
	repo.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	repo.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("m-%04d", seq)
	}
	return repo, audit
}
