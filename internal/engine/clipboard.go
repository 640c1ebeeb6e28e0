package engine

import (
	"github.com/blackboard/blackboard/internal/document"
	"github.com/blackboard/blackboard/internal/typeid"
)

// PasteOffset is the distance pasted shapes are shifted from their source.
const PasteOffset = 20.0

// Copy stores the selected shapes, with their subtrees, on the clipboard.
// It returns the number of shapes copied.
func (e *Engine) Copy() int {
	ids := e.movingRoots()
	if len(ids) == 0 {
		return 0
	}
	e.clipboard = e.scene.records(ids)
	return len(ids)
}

// Clipboard returns the copied records.
func (e *Engine) Clipboard() []document.ShapeRecord {
	return e.clipboard
}

// Paste inserts fresh copies of the clipboard offset by PasteOffset and
// selects them. Pins between copied shapes are carried over to the copies;
// pins to shapes outside the clipboard are dropped.
func (e *Engine) Paste() []string {
	if len(e.clipboard) == 0 {
		return nil
	}
	var pasted []string
	e.mutate(func() bool {
		remap := make(map[string]string)
		recs := make([]document.ShapeRecord, len(e.clipboard))
		for i := range e.clipboard {
			recs[i] = reidentify(e.clipboard[i], remap)
		}

		var created []Shape
		for i := range recs {
			sh := buildShape(e.scene, &recs[i])
			if sh == nil {
				continue
			}
			e.scene.insert(ID(sh), "", -1)
			pasted = append(pasted, ID(sh))
			created = append(created, sh)
			created = append(created, e.scene.Descendants(ID(sh))...)
		}
		for _, sh := range created {
			shiftOwn(sh, PasteOffset, PasteOffset)
			if l, ok := sh.(*Line); ok {
				l.StartShapeID, l.StartAnchorID = repin(remap, l.StartShapeID, l.StartAnchorID)
				l.EndShapeID, l.EndAnchorID = repin(remap, l.EndShapeID, l.EndAnchorID)
			}
		}
		if len(pasted) == 0 {
			return false
		}
		e.selection.Set(pasted)
		return true
	})
	return pasted
}

// reidentify deep-copies a record tree, giving every node a new ID.
func reidentify(rec document.ShapeRecord, remap map[string]string) document.ShapeRecord {
	prefix := typeid.PrefixShape
	if rec.Type == document.KindGroup {
		prefix = typeid.PrefixGroup
	}
	newID := typeid.New(prefix)
	if rec.ID != "" {
		remap[rec.ID] = newID
	}
	rec.ID = newID
	if rec.Points != nil {
		rec.Points = append([]document.Point(nil), rec.Points...)
	}
	if rec.StrokeDash != nil {
		rec.StrokeDash = append([]float64(nil), rec.StrokeDash...)
	}
	if rec.Children != nil {
		children := make([]document.ShapeRecord, len(rec.Children))
		for i := range rec.Children {
			children[i] = reidentify(rec.Children[i], remap)
		}
		rec.Children = children
	}
	return rec
}

func repin(remap map[string]string, shapeID, anchorID string) (string, string) {
	if shapeID == "" {
		return "", ""
	}
	if id, ok := remap[shapeID]; ok {
		return id, anchorID
	}
	return "", ""
}
