package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackboard/blackboard/internal/document"
)

var (
	ErrBoardExists   = errors.New("board already exists")
	ErrBoardNotFound = errors.New("board not found")
	ErrInvalidName   = errors.New("invalid board name")
)

// DefaultBoard is the board opened when nothing else exists.
const DefaultBoard = "default.json"

const boardExt = ".json"

// Store loads and saves the current board.
type Store interface {
	Load(ctx context.Context) (*document.Document, error)
	Save(ctx context.Context, doc *document.Document) error
}

// Catalog is a Store holding several named boards, one of them current.
type Catalog interface {
	Store
	List(ctx context.Context) ([]Board, error)
	Create(ctx context.Context, name string) (Board, error)
	Switch(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	Current() string
}

type Board struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

// BoardName normalizes a user supplied board name: surrounding space is
// trimmed and the .json suffix added when missing. Names naming a path
// are rejected.
func BoardName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == boardExt || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.HasSuffix(name, boardExt) {
		name += boardExt
	}
	return name, nil
}

func boards(names []string, current string) []Board {
	out := make([]Board, len(names))
	for i, n := range names {
		out[i] = Board{Name: n, Current: n == current}
	}
	return out
}

// fallback picks the board to open after the current one was deleted.
func fallback(remaining []string) (name string, create bool) {
	if len(remaining) > 0 {
		return remaining[0], false
	}
	return DefaultBoard, true
}

// decode turns stored bytes into a document. Undecodable data yields an
// empty board and the error, so a corrupt board never blocks startup.
func decode(name string, data []byte) (*document.Document, error) {
	doc, err := document.Decode(data)
	if err != nil {
		return doc, fmt.Errorf("decode board %s: %w", name, err)
	}
	return doc, nil
}
