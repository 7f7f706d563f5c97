package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect opens the database for driver ("postgres" or "sqlite") and runs migrations.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if driver == "sqlite" {
		// in-memory databases are per connection
		db.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// Migrate creates the message table and the directory tables it joins against.
// Statements are portable between postgres and sqlite.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id VARCHAR(36) PRIMARY KEY,
            username VARCHAR(50) NOT NULL UNIQUE,
            email VARCHAR(100) NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS user_groups (
            id VARCHAR(36) PRIMARY KEY,
            name VARCHAR(50) NOT NULL UNIQUE
        );`,
		`CREATE TABLE IF NOT EXISTS auth_tokens (
            id VARCHAR(36) PRIMARY KEY,
            user_id VARCHAR(36) NOT NULL REFERENCES users(id),
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id VARCHAR(36) PRIMARY KEY,
            content VARCHAR(4000) NOT NULL,
            type VARCHAR(20) NOT NULL,
            target_id VARCHAR(36) NOT NULL,
            sender_id VARCHAR(36) NOT NULL,
            created_at TIMESTAMP NOT NULL,
            deleted_at TIMESTAMP NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_target ON messages (target_id, type);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages (sender_id, type);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	zap.L().Info("database migrations applied", zap.String("driver", db.DriverName()))
	return nil
}
