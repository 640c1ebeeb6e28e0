package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/blackboard/blackboard/internal/document"
	"github.com/blackboard/blackboard/internal/typeid"
)

// Tool is the active pointer tool. It only affects gesture handling and
// whether switching clears the selection.
type Tool string

const (
	ToolHand         Tool = "hand"
	ToolSelection    Tool = "selection"
	ToolBoxSelection Tool = "box_selection"
	ToolLine         Tool = "line"
	ToolRectangle    Tool = "rectangle"
	ToolCircle       Tool = "circle"
	ToolText         Tool = "text"
	ToolPen          Tool = "pen"
	ToolPolygon      Tool = "polygon"
	ToolEraser       Tool = "eraser"
)

// ParseTool reports the Tool named by s.
func ParseTool(s string) (Tool, bool) {
	switch t := Tool(s); t {
	case ToolHand, ToolSelection, ToolBoxSelection, ToolLine, ToolRectangle,
		ToolCircle, ToolText, ToolPen, ToolPolygon, ToolEraser:
		return t, true
	}
	return "", false
}

// Zoom limits for SetZoom.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Saver receives the document whenever persisted state changes. The
// storage layer debounces; immediate asks for a synchronous write.
type Saver interface {
	Save(doc *document.Document, immediate bool)
}

// ListenerID identifies a registered listener.
type ListenerID int

// Engine is one editor session. It owns the scene, the selection, the
// history stacks and the view, and is not safe for concurrent use: callers
// serialize every command onto a single goroutine.
type Engine struct {
	scene     *Scene
	selection Selection
	history   *History
	saver     Saver

	listeners    map[ListenerID]func()
	nextListener ListenerID

	tool        Tool
	lineType    string
	polygonType string
	view        document.View
	expanded    map[string]bool
	clipboard   []document.ShapeRecord

	// batch is the set of shapes moved together by the current transform.
	batch   map[string]bool
	gesture gesture
}

// Option configures an Engine.
type Option func(*Engine)

// WithSaver wires the persistence collaborator.
func WithSaver(s Saver) Option {
	return func(e *Engine) { e.saver = s }
}

// WithHistoryDepth overrides the number of undo steps kept.
func WithHistoryDepth(n int) Option {
	return func(e *Engine) { e.history = NewHistory(n) }
}

// NewEngine creates a new engine instance with an empty board.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scene:       NewScene(),
		history:     NewHistory(DefaultHistoryDepth),
		listeners:   make(map[ListenerID]func()),
		tool:        ToolSelection,
		lineType:    DefaultLineType,
		polygonType: DefaultPolygonType,
		view:        document.DefaultView(),
		expanded:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Observer ---

// AddListener registers cb to run after every mutation.
func (e *Engine) AddListener(cb func()) ListenerID {
	e.nextListener++
	e.listeners[e.nextListener] = cb
	return e.nextListener
}

func (e *Engine) RemoveListener(id ListenerID) {
	delete(e.listeners, id)
}

// Notify runs listeners in registration order and, when save is set,
// hands the document to the saver.
func (e *Engine) Notify(save bool) {
	for _, id := range slices.Sorted(maps.Keys(e.listeners)) {
		if cb, ok := e.listeners[id]; ok {
			cb()
		}
	}
	if save && e.saver != nil {
		e.saver.Save(e.Document(), false)
	}
}

// --- Document ---

// Load replaces the board with doc. History and selection are reset.
func (e *Engine) Load(doc *document.Document) {
	if doc == nil {
		doc = document.NewEmptyDocument()
	}
	e.scene = BuildScene(doc.Shapes)
	e.view = doc.View
	if e.view.Zoom <= 0 {
		e.view.Zoom = 1
	}
	e.selection.Clear()
	e.history.Clear()
	e.expanded = make(map[string]bool)
	e.batch = nil
	e.gesture = gesture{}
	e.Notify(false)
}

// LoadSampleDocument loads the built-in sample board.
func (e *Engine) LoadSampleDocument() {
	e.Load(document.NewSampleDocument())
}

// Document returns the persisted form of the current board.
func (e *Engine) Document() *document.Document {
	return &document.Document{View: e.view, Shapes: e.scene.Records()}
}

// Scene exposes the scene for read-only queries.
func (e *Engine) Scene() *Scene {
	return e.scene
}

// Shape returns the shape with the given ID or nil.
func (e *Engine) Shape(id string) Shape {
	return e.scene.Get(id)
}

// Shapes returns the root shapes in z-order.
func (e *Engine) Shapes() []Shape {
	roots := e.scene.Roots()
	out := make([]Shape, 0, len(roots))
	for _, id := range roots {
		out = append(out, e.scene.Get(id))
	}
	return out
}

// --- History ---

// Snapshot commits the current state to the undo stack.
func (e *Engine) Snapshot() {
	if snap, ok := e.capture(); ok {
		e.history.Commit(snap)
	}
}

func (e *Engine) capture() (Snapshot, bool) {
	snap, err := TakeSnapshot(e.scene, e.selection.IDs())
	if err != nil {
		slog.Error("take snapshot", "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

// mutate runs a discrete action. The pre-action state is committed only if
// fn reports a change, so rejected requests leave history untouched.
func (e *Engine) mutate(fn func() bool) bool {
	before, ok := e.capture()
	if !fn() {
		return false
	}
	if ok {
		e.history.Commit(before)
	}
	e.selection.Prune(e.scene)
	e.Notify(true)
	return true
}

func (e *Engine) Undo() bool {
	return e.step(e.history.Undo)
}

func (e *Engine) Redo() bool {
	return e.step(e.history.Redo)
}

func (e *Engine) step(pop func(Snapshot) (Snapshot, bool)) bool {
	current, ok := e.capture()
	if !ok {
		return false
	}
	snap, ok := pop(current)
	if !ok {
		return false
	}
	scene, err := snap.Restore()
	if err != nil {
		slog.Error("restore snapshot", "error", err)
		return false
	}
	e.scene = scene
	e.selection.Set(snap.Selection)
	e.selection.Prune(e.scene)
	e.batch = nil
	e.gesture = gesture{}
	e.Notify(true)
	return true
}

func (e *Engine) CanUndo() bool { return e.history.CanUndo() }
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// History exposes the undo/redo stacks.
func (e *Engine) History() *History { return e.history }

// --- Shapes ---

// AddShape appends a shape to the top of the root list. A shape without
// an ID gets one; a duplicate ID is rejected.
func (e *Engine) AddShape(sh Shape) bool {
	if sh == nil {
		return false
	}
	b := sh.Common()
	if b.ID == "" {
		b.ID = typeid.NewShapeID()
	}
	if g, ok := sh.(*Group); ok && len(g.Children) > 0 {
		return false
	}
	return e.mutate(func() bool {
		if e.scene.Has(b.ID) {
			return false
		}
		e.scene.Add(sh)
		return true
	})
}

// RemoveShape deletes a shape and its subtree.
func (e *Engine) RemoveShape(id string) bool {
	return e.mutate(func() bool {
		descendants := e.scene.Descendants(id)
		if !e.scene.Remove(id) {
			return false
		}
		delete(e.expanded, id)
		for _, d := range descendants {
			delete(e.expanded, ID(d))
		}
		return true
	})
}

// RemoveSelected deletes every selected shape.
func (e *Engine) RemoveSelected() bool {
	ids := e.selection.IDs()
	return e.mutate(func() bool {
		removed := false
		for _, id := range ids {
			removed = e.scene.Remove(id) || removed
		}
		return removed
	})
}

// UpdateShape applies a property edit and snaps connections to the new
// geometry. fn must not change the shape's ID or a group's child list.
func (e *Engine) UpdateShape(id string, fn func(Shape)) bool {
	return e.mutate(func() bool {
		sh := e.scene.Get(id)
		if sh == nil {
			return false
		}
		fn(sh)
		sh.Common().ID = id
		e.scene.RefreshConnections(id)
		return true
	})
}

// PatchShape edits a shape through its record form: patch sees the
// current record and may change any field but the ID, the kind and a
// group's members.
func (e *Engine) PatchShape(id string, patch func(*document.ShapeRecord)) bool {
	rec, ok := e.scene.Record(id)
	if !ok {
		return false
	}
	kind := rec.Type
	rec.Children = nil
	patch(&rec)
	rec.ID, rec.Type = "", kind

	var next Shape
	if kind == document.KindGroup {
		next = &Group{Base: baseFromRecord(id, &rec)}
	} else {
		sh, err := ShapeFromRecord(rec)
		if err != nil {
			slog.Warn("patch shape", "id", id, "error", err)
			return false
		}
		next = sh
	}
	return e.UpdateShape(id, func(sh Shape) { assign(sh, next) })
}

// assign copies src into dst, which must be the same kind. A group keeps
// its members.
func assign(dst, src Shape) {
	switch d := dst.(type) {
	case *Line:
		*d = *src.(*Line)
	case *Rectangle:
		*d = *src.(*Rectangle)
	case *Circle:
		*d = *src.(*Circle)
	case *Text:
		*d = *src.(*Text)
	case *Path:
		*d = *src.(*Path)
	case *Polygon:
		*d = *src.(*Polygon)
	case *Group:
		d.Base = *src.Common()
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", dst))
	}
}

// Translate moves one shape as a discrete action.
func (e *Engine) Translate(id string, dx, dy float64) bool {
	return e.mutate(func() bool {
		return e.scene.Translate(id, dx, dy, e.batchFor(id))
	})
}

// ResizeShape moves a resize handle of a shape to (x, y).
func (e *Engine) ResizeShape(id, handle string, x, y float64) bool {
	return e.mutate(func() bool {
		return e.scene.Resize(id, handle, x, y)
	})
}

// ResizeGroup scales a group's members into box.
func (e *Engine) ResizeGroup(id string, box Rect) bool {
	return e.mutate(func() bool {
		return e.scene.ResizeGroup(id, box)
	})
}

// TranslateSelection moves the selection by one delta as a single
// undoable step.
func (e *Engine) TranslateSelection(dx, dy float64) bool {
	if e.selection.Len() == 0 || (dx == 0 && dy == 0) {
		return false
	}
	return e.mutate(func() bool {
		batch := e.selectionBatch()
		moved := false
		for _, id := range e.movingRoots() {
			moved = e.scene.Translate(id, dx, dy, batch) || moved
		}
		return moved
	})
}

// --- Transform batch ---

// BeginTransform freezes the current selection as the batch moved together.
func (e *Engine) BeginTransform() {
	e.batch = e.selectionBatch()
}

// EndTransform clears the batch.
func (e *Engine) EndTransform() {
	e.batch = nil
}

// MoveSelection translates every selected shape by the same delta once.
// It is the per-frame step of a drag and takes no snapshot.
func (e *Engine) MoveSelection(dx, dy float64) {
	if e.selection.Len() == 0 || (dx == 0 && dy == 0) {
		return
	}
	batch := e.batch
	if batch == nil {
		batch = e.selectionBatch()
	}
	for _, id := range e.movingRoots() {
		e.scene.Translate(id, dx, dy, batch)
	}
	e.Notify(false)
}

// movingRoots returns selected shapes in scene order, skipping any whose
// ancestor is also selected.
func (e *Engine) movingRoots() []string {
	var ids []string
	e.scene.Walk(func(sh Shape) {
		id := ID(sh)
		if !e.selection.Contains(id) {
			return
		}
		for _, anc := range e.scene.Ancestors(id) {
			if e.selection.Contains(anc) {
				return
			}
		}
		ids = append(ids, id)
	})
	return ids
}

func (e *Engine) batchFor(id string) map[string]bool {
	if e.batch != nil {
		return e.batch
	}
	if e.selection.Contains(id) {
		return e.selectionBatch()
	}
	return nil
}

func (e *Engine) selectionBatch() map[string]bool {
	batch := make(map[string]bool)
	for _, id := range e.selection.IDs() {
		batch[id] = true
		for _, d := range e.scene.Descendants(id) {
			batch[ID(d)] = true
		}
	}
	return batch
}

// --- Selection ---

// Select replaces the selection with id; "" clears it.
func (e *Engine) Select(id string) {
	e.selection.Clear()
	if e.scene.Has(id) {
		e.selection.Add(id)
	}
	e.Notify(false)
}

// SelectShapes replaces the selection, ignoring unknown IDs.
func (e *Engine) SelectShapes(ids []string) {
	e.selection.Set(ids)
	e.selection.Prune(e.scene)
	e.Notify(false)
}

func (e *Engine) ToggleSelection(id string) {
	if !e.scene.Has(id) {
		return
	}
	e.selection.Toggle(id)
	e.Notify(false)
}

func (e *Engine) ClearSelection() {
	e.selection.Clear()
	e.Notify(false)
}

func (e *Engine) Selected() []string       { return e.selection.IDs() }
func (e *Engine) IsSelected(id string) bool { return e.selection.Contains(id) }

// MarqueeSelect selects the root shapes overlapping r. With additive the
// hits are appended to the current selection.
func (e *Engine) MarqueeSelect(r Rect, additive bool) {
	hits := e.scene.MarqueeHits(r)
	if additive {
		for _, id := range hits {
			e.selection.Add(id)
		}
	} else {
		e.selection.Set(hits)
	}
	e.Notify(false)
}

// SelectionBounds returns the box around every selected shape.
func (e *Engine) SelectionBounds() (Rect, bool) {
	var ext extent
	for _, id := range e.selection.IDs() {
		if sh := e.scene.Get(id); sh != nil {
			if b, ok := e.scene.Bounds(sh); ok {
				ext.addRect(b)
			}
		}
	}
	return ext.rect()
}

// HitTest returns the topmost root shape under the world point.
func (e *Engine) HitTest(x, y float64) string {
	return e.scene.HitTest(x, y, e.view.Zoom)
}

// --- Grouping ---

// Group wraps the root-level shapes among ids into a new group and selects
// it. It returns the group ID, or "" when fewer than two shapes qualify.
func (e *Engine) Group(ids []string) string {
	groupID := typeid.NewGroupID()
	ok := e.mutate(func() bool {
		if !e.scene.GroupShapes(groupID, ids) {
			return false
		}
		e.selection.Set([]string{groupID})
		return true
	})
	if !ok {
		return ""
	}
	return groupID
}

// Ungroup dissolves the groups among ids and selects their children.
func (e *Engine) Ungroup(ids []string) []string {
	var released []string
	e.mutate(func() bool {
		released = e.scene.Ungroup(ids)
		if len(released) == 0 {
			return false
		}
		for _, id := range ids {
			delete(e.expanded, id)
		}
		e.selection.Set(released)
		return true
	})
	return released
}

// --- Layers ---

// Reorder moves source after target, or into target when it is an
// expanded group. BottomTarget moves source to the bottom of the root list.
func (e *Engine) Reorder(sourceID, targetID string) bool {
	return e.mutate(func() bool {
		return e.scene.Reorder(sourceID, targetID, e.IsExpanded)
	})
}

func (e *Engine) MoveToFront(id string) bool {
	return e.mutate(func() bool { return e.scene.MoveToFront(id) })
}

func (e *Engine) MoveToBack(id string) bool {
	return e.mutate(func() bool { return e.scene.MoveToBack(id) })
}

func (e *Engine) MoveForward(id string) bool {
	return e.mutate(func() bool { return e.scene.MoveForward(id) })
}

func (e *Engine) MoveBackward(id string) bool {
	return e.mutate(func() bool { return e.scene.MoveBackward(id) })
}

// ToggleGroupExpansion flips whether a group is expanded in the layer list.
func (e *Engine) ToggleGroupExpansion(id string) {
	if _, ok := e.scene.Get(id).(*Group); !ok {
		return
	}
	if e.expanded[id] {
		delete(e.expanded, id)
	} else {
		e.expanded[id] = true
	}
	e.Notify(false)
}

func (e *Engine) IsExpanded(id string) bool {
	return e.expanded[id]
}

// --- Tools and view ---

// SetTool switches the pointer tool. Drawing tools clear the selection.
func (e *Engine) SetTool(t Tool) {
	if e.gesture.active() {
		e.Cancel()
	}
	e.tool = t
	switch t {
	case ToolSelection, ToolBoxSelection, ToolHand:
	default:
		e.selection.Clear()
	}
	e.Notify(false)
}

func (e *Engine) Tool() Tool { return e.tool }

// SetLineType picks the sub-type for lines drawn with the line tool.
func (e *Engine) SetLineType(lineType string) {
	e.lineType = lineType
	e.Notify(false)
}

// SetPolygonType picks the sub-type for polygons drawn with the polygon tool.
func (e *Engine) SetPolygonType(polygonType string) {
	e.polygonType = polygonType
	e.Notify(false)
}

func (e *Engine) View() document.View { return e.view }

func (e *Engine) SetPan(x, y float64) {
	e.view.PanX, e.view.PanY = x, y
	e.Notify(true)
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (e *Engine) SetZoom(zoom float64) {
	e.view.Zoom = max(MinZoom, min(MaxZoom, zoom))
	e.Notify(true)
}

// SetGridType sets the background grid persisted with the view.
func (e *Engine) SetGridType(gridType string) {
	switch gridType {
	case document.GridNone, document.GridLine, document.GridDot:
	default:
		return
	}
	e.view.GridType = gridType
	e.Notify(true)
}

// ViewMatrix maps world coordinates to screen coordinates.
func (e *Engine) ViewMatrix() Affine {
	return ViewTransform(e.view.PanX, e.view.PanY, e.view.Zoom)
}

func (e *Engine) ToScreen(x, y float64) (float64, float64) {
	return e.ViewMatrix().Apply(x, y)
}

// ToWorld is the identity while the zoom is zero.
func (e *Engine) ToWorld(sx, sy float64) (float64, float64) {
	inv, ok := e.ViewMatrix().Inverse()
	if !ok {
		return sx, sy
	}
	return inv.Apply(sx, sy)
}
