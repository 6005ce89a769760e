package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/davidbz/pressroom/internal/domain"
)

// SQLiteStore persists overrides in a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS preferences (
		client_id TEXT PRIMARY KEY,
		questions_prompt TEXT NOT NULL DEFAULT '',
		followup_prompt TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get returns the overrides for clientID, or a zero value.
func (s *SQLiteStore) Get(ctx context.Context, clientID string) (domain.PromptOverrides, error) {
	if clientID == "" {
		return domain.PromptOverrides{}, domain.NewInputError("client_id", "cannot be empty")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT questions_prompt, followup_prompt FROM preferences WHERE client_id = ?`, clientID)

	var overrides domain.PromptOverrides
	err := row.Scan(&overrides.Questions, &overrides.FollowUp)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PromptOverrides{}, nil
	}
	if err != nil {
		return domain.PromptOverrides{}, fmt.Errorf("scan preferences row: %w", err)
	}
	return overrides, nil
}

// Put replaces the overrides for clientID.
func (s *SQLiteStore) Put(ctx context.Context, clientID string, overrides domain.PromptOverrides) error {
	if clientID == "" {
		return domain.NewInputError("client_id", "cannot be empty")
	}
	if overrides.IsZero() {
		return s.Delete(ctx, clientID)
	}

	query := `
		INSERT INTO preferences (client_id, questions_prompt, followup_prompt, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			questions_prompt = excluded.questions_prompt,
			followup_prompt = excluded.followup_prompt,
			updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query,
		clientID, overrides.Questions, overrides.FollowUp, s.now().Unix()); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// Delete removes the overrides for clientID.
func (s *SQLiteStore) Delete(ctx context.Context, clientID string) error {
	if clientID == "" {
		return domain.NewInputError("client_id", "cannot be empty")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE client_id = ?`, clientID); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
