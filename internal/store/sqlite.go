package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nexus-backend/internal/domain"

	_ "modernc.org/sqlite"
)

// instructionsDocID keys the single current system instructions row.
const instructionsDocID = "current"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db             *sql.DB
	instructionsMu sync.Mutex // serializes read-increment-write of the version counter
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS knowledge (
		category TEXT PRIMARY KEY,
		content TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL,
		updated_by TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS system_instructions (
		doc_id TEXT PRIMARY KEY,
		content TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL,
		updated_by TEXT NOT NULL DEFAULT ''
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetAllCategories retrieves content for every knowledge category. Categories
// without a stored row are returned with empty content so the result always
// carries the full fixed key set.
func (s *SQLiteStore) GetAllCategories(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, content FROM knowledge`)
	if err != nil {
		return nil, fmt.Errorf("query knowledge: %w", err)
	}
	defer rows.Close()

	result := domain.EmptyKnowledge()
	for rows.Next() {
		var category, content string
		if err := rows.Scan(&category, &content); err != nil {
			return nil, fmt.Errorf("scan knowledge row: %w", err)
		}
		// Rows for retired categories are ignored rather than surfaced.
		if _, ok := result[category]; ok {
			result[category] = content
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge rows: %w", err)
	}

	return result, nil
}

// GetCategory retrieves content for a single category.
func (s *SQLiteStore) GetCategory(ctx context.Context, category string) (string, error) {
	if !domain.ValidCategory(category) {
		return "", fmt.Errorf("invalid category: %s", category)
	}

	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM knowledge WHERE category = ?`, category,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan category row: %w", err)
	}
	return content, nil
}

// SaveCategory stores content for a category.
func (s *SQLiteStore) SaveCategory(ctx context.Context, category, content, updatedBy string) error {
	if !domain.ValidCategory(category) {
		return fmt.Errorf("invalid category: %s", category)
	}

	query := `
	INSERT INTO knowledge (category, content, updated_at, updated_by)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(category) DO UPDATE SET
		content = excluded.content,
		updated_at = excluded.updated_at,
		updated_by = excluded.updated_by`

	if _, err := s.db.ExecContext(ctx, query, category, content, time.Now().Unix(), updatedBy); err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

// DeleteCategory resets a category to empty content.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, category string) error {
	if !domain.ValidCategory(category) {
		return fmt.Errorf("invalid category: %s", category)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM knowledge WHERE category = ?`, category); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// GetInstructions retrieves the current system instructions.
func (s *SQLiteStore) GetInstructions(ctx context.Context) (*domain.Instructions, error) {
	var ins domain.Instructions
	err := s.db.QueryRowContext(ctx,
		`SELECT content, version, updated_at, updated_by FROM system_instructions WHERE doc_id = ?`,
		instructionsDocID,
	).Scan(&ins.Content, &ins.Version, &ins.UpdatedAt, &ins.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Instructions{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan instructions row: %w", err)
	}
	return &ins, nil
}

// SaveInstructions stores new system instructions and bumps the version.
func (s *SQLiteStore) SaveInstructions(ctx context.Context, content, updatedBy string) (int, error) {
	s.instructionsMu.Lock()
	defer s.instructionsMu.Unlock()

	current, err := s.GetInstructions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load current instructions: %w", err)
	}
	newVersion := current.Version + 1

	query := `
	INSERT INTO system_instructions (doc_id, content, version, updated_at, updated_by)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(doc_id) DO UPDATE SET
		content = excluded.content,
		version = excluded.version,
		updated_at = excluded.updated_at,
		updated_by = excluded.updated_by`

	if _, err := s.db.ExecContext(ctx, query, instructionsDocID, content, newVersion, time.Now().Unix(), updatedBy); err != nil {
		return 0, fmt.Errorf("save instructions: %w", err)
	}
	return newVersion, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
