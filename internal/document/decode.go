package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnsupportedDocument = errors.New("unsupported document")

// Decode parses a stored board. Two layouts are accepted: the current
// {"view", "shapes"} object and the legacy bare array of shapes, which gets
// the default view. Anything else yields an empty document together with
// the error, so callers can log and carry on with a blank board.
func Decode(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return NewEmptyDocument(), nil
	}

	switch trimmed[0] {
	case '[':
		var shapes []ShapeRecord
		if err := json.Unmarshal(trimmed, &shapes); err != nil {
			return NewEmptyDocument(), fmt.Errorf("decode legacy shapes: %w", err)
		}
		doc := NewEmptyDocument()
		if shapes != nil {
			doc.Shapes = shapes
		}
		return doc, nil

	case '{':
		var raw struct {
			View   *View         `json:"view"`
			Shapes []ShapeRecord `json:"shapes"`
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return NewEmptyDocument(), fmt.Errorf("decode document: %w", err)
		}
		doc := NewEmptyDocument()
		if raw.View != nil {
			doc.View = normalizeView(*raw.View)
		}
		if raw.Shapes != nil {
			doc.Shapes = raw.Shapes
		}
		return doc, nil
	}

	return NewEmptyDocument(), ErrUnsupportedDocument
}

// Encode serializes the document with indentation, matching what is written to disk.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func normalizeView(v View) View {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	switch v.GridType {
	case GridLine, GridDot, GridNone:
	default:
		v.GridType = GridNone
	}
	return v
}
