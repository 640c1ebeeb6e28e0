// Package command decodes editor commands and applies them to an engine.
package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blackboard/blackboard/internal/document"
	"github.com/blackboard/blackboard/internal/engine"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidCommand = errors.New("invalid command")
)

// Command is one editor action. Only the fields its Type reads are set.
type Command struct {
	ID   string `json:"id,omitempty"` // client correlation, echoed in ack/nack
	Type string `json:"type"`

	ShapeID string   `json:"shapeId,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Target  string   `json:"target,omitempty"`

	// shape.add
	Shape *document.ShapeRecord `json:"shape,omitempty"`
	// shape.update: record fields to overwrite
	Patch json.RawMessage `json:"patch,omitempty"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
	Handle string  `json:"handle,omitempty"`
	End    string  `json:"end,omitempty"` // line.connect: "start" or "end"

	Box      *Box `json:"box,omitempty"`
	Additive bool `json:"additive,omitempty"`

	Tool        string  `json:"tool,omitempty"`
	LineType    string  `json:"lineType,omitempty"`
	PolygonType string  `json:"polygonType,omitempty"`
	Zoom        float64 `json:"zoom,omitempty"`
	GridType    string  `json:"gridType,omitempty"`
}

type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Dispatch applies one command to the engine and returns its result value:
// new IDs for shape.add, group and paste, the released IDs for ungroup,
// the copied count for copy and whether anything happened for the rest.
// Commands the engine refuses are not errors; an error means the command
// itself is malformed.
func Dispatch(e *engine.Engine, cmd Command) (any, error) {
	switch cmd.Type {
	case "shape.add":
		return addShape(e, cmd)
	case "shape.remove":
		return removeShapes(e, cmd), nil
	case "shape.update":
		return updateShape(e, cmd)
	case "shape.translate":
		if cmd.ShapeID == "" {
			return e.TranslateSelection(cmd.DX, cmd.DY), nil
		}
		return e.Translate(cmd.ShapeID, cmd.DX, cmd.DY), nil
	case "shape.resize":
		if cmd.ShapeID == "" || cmd.Handle == "" {
			return nil, invalid(cmd, "shapeId and handle are required")
		}
		return e.ResizeShape(cmd.ShapeID, cmd.Handle, cmd.X, cmd.Y), nil

	case "selection.set":
		e.SelectShapes(cmd.IDs)
		return true, nil
	case "selection.toggle":
		e.ToggleSelection(cmd.ShapeID)
		return e.IsSelected(cmd.ShapeID), nil
	case "selection.marquee":
		if cmd.Box == nil {
			return nil, invalid(cmd, "box is required")
		}
		e.MarqueeSelect(rect(cmd.Box), cmd.Additive)
		return true, nil

	case "gesture.press":
		e.Press(cmd.X, cmd.Y, cmd.Shift)
		return true, nil
	case "gesture.drag":
		e.Drag(cmd.X, cmd.Y, cmd.Shift)
		return true, nil
	case "gesture.release":
		e.Release()
		return true, nil
	case "gesture.cancel":
		e.Cancel()
		return true, nil

	case "group":
		id := e.Group(idsOrSelection(e, cmd))
		if id == "" {
			return nil, nil
		}
		return id, nil
	case "ungroup":
		return e.Ungroup(idsOrSelection(e, cmd)), nil
	case "group.resize":
		if cmd.Box == nil {
			return nil, invalid(cmd, "box is required")
		}
		return e.ResizeGroup(cmd.ShapeID, rect(cmd.Box)), nil
	case "group.expand":
		e.ToggleGroupExpansion(cmd.ShapeID)
		return e.IsExpanded(cmd.ShapeID), nil

	case "reorder":
		return e.Reorder(cmd.ShapeID, cmd.Target), nil
	case "layer.front":
		return e.MoveToFront(cmd.ShapeID), nil
	case "layer.back":
		return e.MoveToBack(cmd.ShapeID), nil
	case "layer.forward":
		return e.MoveForward(cmd.ShapeID), nil
	case "layer.backward":
		return e.MoveBackward(cmd.ShapeID), nil

	case "tool.set":
		return setTool(e, cmd)
	case "view.pan":
		e.SetPan(cmd.X, cmd.Y)
		return true, nil
	case "view.zoom":
		if cmd.Zoom <= 0 {
			return nil, invalid(cmd, "zoom must be positive")
		}
		e.SetZoom(cmd.Zoom)
		return e.View().Zoom, nil
	case "view.grid":
		e.SetGridType(cmd.GridType)
		return e.View().GridType == cmd.GridType, nil

	case "copy":
		return e.Copy(), nil
	case "paste":
		return e.Paste(), nil
	case "undo":
		return e.Undo(), nil
	case "redo":
		return e.Redo(), nil

	case "path.erase":
		return e.ErasePath(cmd.ShapeID, cmd.X, cmd.Y), nil
	case "line.connect":
		if cmd.End != engine.AnchorStart && cmd.End != engine.AnchorEnd {
			return nil, invalid(cmd, "end must be start or end")
		}
		return e.ConnectLine(cmd.ShapeID, cmd.End, cmd.X, cmd.Y), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

func invalid(cmd Command, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidCommand, cmd.Type, reason)
}

func addShape(e *engine.Engine, cmd Command) (any, error) {
	if cmd.Shape == nil {
		return nil, invalid(cmd, "shape is required")
	}
	sh, err := engine.ShapeFromRecord(*cmd.Shape)
	if err != nil {
		return nil, invalid(cmd, err.Error())
	}
	if !e.AddShape(sh) {
		return nil, nil
	}
	return engine.ID(sh), nil
}

func removeShapes(e *engine.Engine, cmd Command) bool {
	if cmd.ShapeID == "" && len(cmd.IDs) == 0 {
		return e.RemoveSelected()
	}
	ids := cmd.IDs
	if cmd.ShapeID != "" {
		ids = append([]string{cmd.ShapeID}, ids...)
	}
	removed := false
	for _, id := range ids {
		removed = e.RemoveShape(id) || removed
	}
	return removed
}

func updateShape(e *engine.Engine, cmd Command) (any, error) {
	if cmd.ShapeID == "" || len(cmd.Patch) == 0 {
		return nil, invalid(cmd, "shapeId and patch are required")
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(cmd.Patch, &probe); err != nil {
		return nil, invalid(cmd, "patch must be an object")
	}
	var decodeErr error
	ok := e.PatchShape(cmd.ShapeID, func(rec *document.ShapeRecord) {
		decodeErr = json.Unmarshal(cmd.Patch, rec)
	})
	if decodeErr != nil {
		return nil, invalid(cmd, decodeErr.Error())
	}
	return ok, nil
}

func setTool(e *engine.Engine, cmd Command) (any, error) {
	if cmd.Tool != "" {
		t, ok := engine.ParseTool(cmd.Tool)
		if !ok {
			return nil, invalid(cmd, fmt.Sprintf("unknown tool %q", cmd.Tool))
		}
		e.SetTool(t)
	}
	if cmd.LineType != "" {
		e.SetLineType(cmd.LineType)
	}
	if cmd.PolygonType != "" {
		e.SetPolygonType(cmd.PolygonType)
	}
	return string(e.Tool()), nil
}

func idsOrSelection(e *engine.Engine, cmd Command) []string {
	if len(cmd.IDs) > 0 {
		return cmd.IDs
	}
	return e.Selected()
}

func rect(b *Box) engine.Rect {
	return engine.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}
