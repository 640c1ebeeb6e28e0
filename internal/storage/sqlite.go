package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/blackboard/blackboard/internal/document"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS boards (
	name       TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// OpenSQLite opens the database file at path, creating its directory.
func OpenSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// SQLiteStore keeps boards as rows of a single table.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	current string
}

// NewSQLiteStore creates the schema if needed and makes name the current
// board, inserting it empty when missing.
func NewSQLiteStore(ctx context.Context, db *sql.DB, name string) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	name, err := BoardName(name)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db, current: name}
	if _, err := s.insert(ctx, name); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// insert adds an empty board unless one exists, reporting whether it did.
func (s *SQLiteStore) insert(ctx context.Context, name string) (bool, error) {
	data, err := document.Encode(document.NewEmptyDocument())
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO boards (name, document) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
		name, string(data))
	if err != nil {
		return false, fmt.Errorf("insert board %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert board %s: %w", name, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*document.Document, error) {
	name := s.Current()
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM boards WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return document.NewEmptyDocument(), nil
	}
	if err != nil {
		return document.NewEmptyDocument(), fmt.Errorf("load board %s: %w", name, err)
	}
	return decode(name, []byte(data))
}

func (s *SQLiteStore) Save(ctx context.Context, doc *document.Document) error {
	name := s.Current()
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO boards (name, document) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		name, string(data))
	if err != nil {
		return fmt.Errorf("save board %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM boards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context) ([]Board, error) {
	names, err := s.names(ctx)
	if err != nil {
		return nil, err
	}
	return boards(names, s.Current()), nil
}

func (s *SQLiteStore) Create(ctx context.Context, name string) (Board, error) {
	name, err := BoardName(name)
	if err != nil {
		return Board{}, err
	}
	created, err := s.insert(ctx, name)
	if err != nil {
		return Board{}, err
	}
	if !created {
		return Board{}, fmt.Errorf("%w: %s", ErrBoardExists, name)
	}
	slog.Info("board created", "name", name)
	return Board{Name: name, Current: name == s.Current()}, nil
}

func (s *SQLiteStore) Switch(ctx context.Context, name string) error {
	name, err := BoardName(name)
	if err != nil {
		return err
	}
	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM boards WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("find board %s: %w", name, err)
	}
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	name, err := BoardName(name)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete board %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete board %s: %w", name, err)
	} else if n == 0 {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, name)
	}
	slog.Info("board deleted", "name", name)
	if name != s.Current() {
		return nil
	}

	remaining, err := s.names(ctx)
	if err != nil {
		return err
	}
	next, create := fallback(remaining)
	if create {
		if _, err := s.insert(ctx, next); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return nil
}
