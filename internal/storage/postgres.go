package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blackboard/blackboard/internal/document"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS board_snapshots (
	board      TEXT        NOT NULL,
	version    INTEGER     NOT NULL,
	document   JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (board, version)
)`

// NewPool connects to Postgres and checks the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore keeps every save as a new version; loading reads the
// latest one.
type PostgresStore struct {
	pool *pgxpool.Pool

	mu      sync.Mutex
	current string
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, name string) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	name, err := BoardName(name)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool, current: name}
	if _, err := s.insert(ctx, name); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *PostgresStore) exists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM board_snapshots WHERE board = $1)`, name).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("find board %s: %w", name, err)
	}
	return ok, nil
}

// insert seeds version 1 of an empty board unless the board exists.
func (s *PostgresStore) insert(ctx context.Context, name string) (bool, error) {
	data, err := document.Encode(document.NewEmptyDocument())
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO board_snapshots (board, version, document) VALUES ($1, 1, $2)
		ON CONFLICT (board, version) DO NOTHING`, name, data)
	if err != nil {
		return false, fmt.Errorf("insert board %s: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*document.Document, error) {
	name := s.Current()
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT document FROM board_snapshots
		WHERE board = $1 ORDER BY version DESC LIMIT 1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return document.NewEmptyDocument(), nil
	}
	if err != nil {
		return document.NewEmptyDocument(), fmt.Errorf("load board %s: %w", name, err)
	}
	return decode(name, data)
}

func (s *PostgresStore) Save(ctx context.Context, doc *document.Document) error {
	name := s.Current()
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO board_snapshots (board, version, document)
		SELECT $1::text, COALESCE(MAX(version), 0) + 1, $2::jsonb
		FROM board_snapshots WHERE board = $1::text`, name, data)
	if err != nil {
		return fmt.Errorf("save board %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) names(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT board FROM board_snapshots ORDER BY board`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Board, error) {
	names, err := s.names(ctx)
	if err != nil {
		return nil, err
	}
	return boards(names, s.Current()), nil
}

func (s *PostgresStore) Create(ctx context.Context, name string) (Board, error) {
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

func (s *PostgresStore) Switch(ctx context.Context, name string) error {
	name, err := BoardName(name)
	if err != nil {
		return err
	}
	ok, err := s.exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, name)
	}
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}

// Delete drops every version of the board.
func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	name, err := BoardName(name)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM board_snapshots WHERE board = $1`, name)
	if err != nil {
		return fmt.Errorf("delete board %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
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

// Versions reports how many snapshots the current board has.
func (s *PostgresStore) Versions(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM board_snapshots WHERE board = $1`, s.Current()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return n, nil
}
