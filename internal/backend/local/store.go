package local

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"vanta/internal/domain"
)

const sqliteParams = "?_journal_mode=WAL&_busy_timeout=5000"

const schema = `
CREATE TABLE IF NOT EXISTS clipboard (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS usage (
	exec TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0,
	last_used TEXT NOT NULL
);
`

// Store persists clipboard history and launch counts
type Store struct {
	db     *sql.DB
	dbPath string
}

// OpenStore opens or creates the database at dbPath
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// AddClipboard records content unless it equals the newest entry, then
// trims the table to the newest keep rows. It reports whether a row was added.
func (s *Store) AddClipboard(ctx context.Context, content string, keep int) (bool, error) {
	added := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var newest string
		err := tx.QueryRowContext(ctx, `SELECT content FROM clipboard ORDER BY id DESC LIMIT 1`).Scan(&newest)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("read newest clip: %w", err)
		}
		if err == nil && newest == content {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clipboard (content, timestamp) VALUES (?, ?)`,
			content, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert clip: %w", err)
		}
		added = true

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM clipboard WHERE id NOT IN (SELECT id FROM clipboard ORDER BY id DESC LIMIT ?)`,
			keep); err != nil {
			return fmt.Errorf("trim clipboard: %w", err)
		}
		return nil
	})
	return added, err
}

// ClipboardHistory returns up to limit entries, newest first
func (s *Store) ClipboardHistory(ctx context.Context, limit int) ([]domain.ClipboardItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, timestamp FROM clipboard ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query clipboard: %w", err)
	}
	defer rows.Close()

	var items []domain.ClipboardItem
	for rows.Next() {
		var (
			item domain.ClipboardItem
			ts   string
		)
		if err := rows.Scan(&item.ID, &item.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		item.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		items = append(items, item)
	}
	return items, rows.Err()
}

// IncrementUsage bumps the launch count for exec
func (s *Store) IncrementUsage(ctx context.Context, exec string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage (exec, count, last_used) VALUES (?, 1, ?)
		ON CONFLICT(exec) DO UPDATE SET count = count + 1, last_used = excluded.last_used`,
		exec, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// Usage returns launch counts keyed by exec
func (s *Store) Usage(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT exec, count FROM usage`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]int)
	for rows.Next() {
		var (
			exec  string
			count int
		)
		if err := rows.Scan(&exec, &count); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		usage[exec] = count
	}
	return usage, rows.Err()
}
