package document

import (
	"github.com/blackboard/blackboard/internal/typeid"
)

// NewSampleDocument returns a small board with two boxes joined by a
// connector, used when a fresh board is requested with sample content.
func NewSampleDocument() *Document {
	startID := typeid.NewShapeID()
	endID := typeid.NewShapeID()
	noteID := typeid.NewShapeID()
	connectorID := typeid.NewShapeID()

	return &Document{
		View: DefaultView(),
		Shapes: []ShapeRecord{
			{
				Type:        KindRectangle,
				ID:          startID,
				X:           100,
				Y:           100,
				Width:       160,
				Height:      80,
				StrokeWidth: 2,
				FillColor:   "transparent",
			},
			{
				Type:        KindCircle,
				ID:          endID,
				X:           420,
				Y:           100,
				RadiusX:     60,
				RadiusY:     40,
				StrokeWidth: 2,
				FillColor:   "transparent",
			},
			{
				Type:          KindLine,
				ID:            connectorID,
				X:             260,
				Y:             140,
				EndX:          420,
				EndY:          140,
				StartShapeID:  startID,
				StartAnchorID: "middle_right",
				EndShapeID:    endID,
				EndAnchorID:   "left",
				LineType:      "connector",
				StrokeWidth:   2,
				FillColor:     "transparent",
			},
			{
				Type:        KindText,
				ID:          noteID,
				X:           100,
				Y:           220,
				Content:     "Drag a box, the connector follows",
				FontSize:    16,
				StrokeWidth: 2,
				FillColor:   "transparent",
			},
		},
	}
}
