package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"message-service/internal/models"
)

// DirectoryRepository resolves human readable names and auth tokens to ids.
type DirectoryRepository interface {
	ResolveTargetID(ctx context.Context, name string, kind models.TargetKind) (string, bool, error)
	UserIDForToken(ctx context.Context, token string) (string, bool, error)
}

// DirectoryRepo reads the users, user_groups and auth_tokens tables.
type DirectoryRepo struct {
	db *sqlx.DB
}

// NewDirectoryRepo constructs a DirectoryRepo.
func NewDirectoryRepo(db *sqlx.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

// ResolveTargetID looks up a username or a group name.
func (r *DirectoryRepo) ResolveTargetID(ctx context.Context, name string, kind models.TargetKind) (string, bool, error) {
	q := `SELECT id FROM users WHERE username = ?`
	if kind == models.TargetKindGroup {
		q = `SELECT id FROM user_groups WHERE name = ?`
	}
	return r.lookup(ctx, q, name)
}

// UserIDForToken returns the user owning an auth token.
func (r *DirectoryRepo) UserIDForToken(ctx context.Context, token string) (string, bool, error) {
	return r.lookup(ctx, `SELECT user_id FROM auth_tokens WHERE id = ?`, token)
}

func (r *DirectoryRepo) lookup(ctx context.Context, q string, arg string) (string, bool, error) {
	var id string
	err := r.db.GetContext(ctx, &id, r.db.Rebind(q), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("directory lookup: %w", err)
	}
	return id, true, nil
}
