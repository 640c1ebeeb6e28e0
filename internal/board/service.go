package board

import (
	"context"
	"log/slog"

	"github.com/blackboard/blackboard/internal/collab"
	"github.com/blackboard/blackboard/internal/command"
	"github.com/blackboard/blackboard/internal/document"
	"github.com/blackboard/blackboard/internal/engine"
	"github.com/blackboard/blackboard/internal/storage"
)

// Saves is the pending-write side of the debounced saver.
type Saves interface {
	Flush() error
	Discard()
}

// Service switches the editor session between boards of a catalog. Every
// step that touches the engine runs on the hub goroutine.
type Service struct {
	catalog storage.Catalog
	saves   Saves
	hub     *collab.Hub
}

func NewService(catalog storage.Catalog, saves Saves, hub *collab.Hub) *Service {
	return &Service{catalog: catalog, saves: saves, hub: hub}
}

func (s *Service) Current() string {
	return s.catalog.Current()
}

func (s *Service) List(ctx context.Context) ([]storage.Board, error) {
	return s.catalog.List(ctx)
}

func (s *Service) Create(ctx context.Context, name string) (storage.Board, error) {
	return s.catalog.Create(ctx, name)
}

// Open saves pending edits to the current board, then loads name into the
// session. Undo history does not survive the switch.
func (s *Service) Open(ctx context.Context, name string) error {
	var err error
	doErr := s.hub.Do(ctx, func(e *engine.Engine) {
		if err = s.saves.Flush(); err != nil {
			return
		}
		if err = s.catalog.Switch(ctx, name); err != nil {
			return
		}
		s.load(ctx, e)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Delete removes a board. Deleting the open board drops its pending edits
// and loads whichever board the catalog falls back to.
func (s *Service) Delete(ctx context.Context, name string) error {
	var err error
	doErr := s.hub.Do(ctx, func(e *engine.Engine) {
		canonical, nameErr := storage.BoardName(name)
		if nameErr != nil {
			err = nameErr
			return
		}
		current := canonical == s.catalog.Current()
		if err = s.catalog.Delete(ctx, canonical); err != nil {
			return
		}
		if current {
			s.saves.Discard()
			s.load(ctx, e)
		}
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Reload replaces the session with the stored copy of the current board.
func (s *Service) Reload(ctx context.Context) error {
	return s.hub.Do(ctx, func(e *engine.Engine) {
		s.saves.Discard()
		s.load(ctx, e)
	})
}

func (s *Service) load(ctx context.Context, e *engine.Engine) {
	doc, err := s.catalog.Load(ctx)
	if err != nil {
		// doc is an empty board here; the broken one stays on disk untouched
		// until the next save.
		slog.Warn("board unreadable, opening empty", "name", s.catalog.Current(), "error", err)
	}
	e.Load(doc)
	slog.Info("board opened", "name", s.catalog.Current(), "shapes", doc.Count())
}

func (s *Service) Document(ctx context.Context) (*document.Document, error) {
	var doc *document.Document
	err := s.hub.Do(ctx, func(e *engine.Engine) { doc = e.Document() })
	return doc, err
}

// HitTest returns the topmost shape at the world point, or "".
func (s *Service) HitTest(ctx context.Context, x, y float64) (string, error) {
	var id string
	err := s.hub.Do(ctx, func(e *engine.Engine) { id = e.HitTest(x, y) })
	return id, err
}

func (s *Service) Submit(ctx context.Context, cmd command.Command) (collab.Outcome, error) {
	return s.hub.Submit(ctx, cmd)
}
