package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/blackboard/blackboard/internal/document"
)

// FileStore keeps each board as a JSON file in one directory.
type FileStore struct {
	dir string

	mu      sync.Mutex
	current string
}

// NewFileStore opens dir, creating it when needed, with name as the
// current board. A missing board file is created empty.
func NewFileStore(dir, name string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	name, err := BoardName(name)
	if err != nil {
		return nil, err
	}
	s := &FileStore{dir: dir, current: name}
	if _, err := os.Stat(s.path(name)); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(name, document.NewEmptyDocument()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *FileStore) Load(ctx context.Context) (*document.Document, error) {
	name := s.Current()
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return document.NewEmptyDocument(), nil
	}
	if err != nil {
		return document.NewEmptyDocument(), fmt.Errorf("read board %s: %w", name, err)
	}
	return decode(name, data)
}

func (s *FileStore) Save(ctx context.Context, doc *document.Document) error {
	return s.write(s.Current(), doc)
}

// write replaces the file through a temp file so readers never see a
// partial document.
func (s *FileStore) write(name string, doc *document.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write board %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close board %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replace board %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), boardExt) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) List(ctx context.Context) ([]Board, error) {
	names, err := s.names()
	if err != nil {
		return nil, err
	}
	return boards(names, s.Current()), nil
}

// Create adds an empty board. It does not switch to it.
func (s *FileStore) Create(ctx context.Context, name string) (Board, error) {
	name, err := BoardName(name)
	if err != nil {
		return Board{}, err
	}
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return Board{}, fmt.Errorf("%w: %s", ErrBoardExists, name)
	}
	if err != nil {
		return Board{}, fmt.Errorf("create board %s: %w", name, err)
	}
	f.Close()
	if err := s.write(name, document.NewEmptyDocument()); err != nil {
		return Board{}, err
	}
	slog.Info("board created", "name", name)
	return Board{Name: name, Current: name == s.Current()}, nil
}

func (s *FileStore) Switch(ctx context.Context, name string) error {
	name, err := BoardName(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, name)
		}
		return fmt.Errorf("stat board %s: %w", name, err)
	}
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}

// Delete removes a board. Deleting the current board switches to the
// first remaining one, or to a fresh default board.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	name, err := BoardName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, name)
		}
		return fmt.Errorf("delete board %s: %w", name, err)
	}
	slog.Info("board deleted", "name", name)
	if name != s.Current() {
		return nil
	}

	remaining, err := s.names()
	if err != nil {
		return err
	}
	next, create := fallback(remaining)
	if create {
		if err := s.write(next, document.NewEmptyDocument()); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return nil
}
