package engine

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/blackboard/blackboard/internal/document"
)

// DefaultHistoryDepth is the number of undo steps kept.
const DefaultHistoryDepth = 50

// Snapshot is one history entry: the serialized root shape list plus the
// selection at that moment.
type Snapshot struct {
	Shapes    json.RawMessage
	Selection []string
}

// History keeps undo and redo stacks of snapshots. Committing a new entry
// clears the redo stack; the undo stack drops its oldest entry past max.
type History struct {
	undo []Snapshot
	redo []Snapshot
	max  int
}

// NewHistory creates a history keeping at most max undo entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistoryDepth
	}
	return &History{max: max}
}

// TakeSnapshot serializes the scene and selection.
func TakeSnapshot(s *Scene, selection []string) (Snapshot, error) {
	data, err := json.Marshal(s.Records())
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	return Snapshot{Shapes: data, Selection: slices.Clone(selection)}, nil
}

// Restore rebuilds the scene a snapshot was taken from.
func (snap Snapshot) Restore() (*Scene, error) {
	var records []document.ShapeRecord
	if err := json.Unmarshal(snap.Shapes, &records); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return BuildScene(records), nil
}

// Commit records the state before a mutation.
func (h *History) Commit(snap Snapshot) {
	h.undo = append(h.undo, snap)
	if len(h.undo) > h.max {
		h.undo = slices.Delete(h.undo, 0, len(h.undo)-h.max)
	}
	h.redo = nil
}

// Undo pops the latest entry and pushes current onto the redo stack.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return last, true
}

// Redo pops the latest undone entry and pushes current onto the undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return next, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Clear drops all history.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
