package document

// Kind is the discriminator stored in every shape record's "type" field.
type Kind string

const (
	KindLine      Kind = "line"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindText      Kind = "text"
	KindPath      Kind = "path"
	KindPolygon   Kind = "polygon"
	KindGroup     Kind = "group"
)

// Grid types persisted with the view. Rendering of the grid is up to the UI.
const (
	GridNone = "none"
	GridLine = "line"
	GridDot  = "dot"
)

// Document is the persisted form of a board: the view plus the root shape list.
type Document struct {
	View   View          `json:"view"`
	Shapes []ShapeRecord `json:"shapes"`
}

type View struct {
	PanX     float64 `json:"pan_x"`
	PanY     float64 `json:"pan_y"`
	Zoom     float64 `json:"zoom"`
	GridType string  `json:"grid_type,omitempty"`
}

// Point is serialized as a two element array.
type Point [2]float64

// ShapeRecord is the flat wire form of a shape. Which fields are meaningful
// depends on Type; groups nest their children in order.
type ShapeRecord struct {
	Type Kind    `json:"type"`
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`

	StrokeColor string    `json:"stroke_color"`
	StrokeWidth float64   `json:"stroke_width"`
	StrokeDash  []float64 `json:"stroke_dash,omitempty"`
	Opacity     *float64  `json:"opacity,omitempty"`
	StrokeJoin  string    `json:"stroke_join,omitempty"`
	Filled      bool      `json:"filled"`
	FillColor   string    `json:"fill_color"`

	// line
	EndX          float64 `json:"end_x,omitempty"`
	EndY          float64 `json:"end_y,omitempty"`
	StartShapeID  string  `json:"start_shape_id,omitempty"`
	StartAnchorID string  `json:"start_anchor_id,omitempty"`
	EndShapeID    string  `json:"end_shape_id,omitempty"`
	EndAnchorID   string  `json:"end_anchor_id,omitempty"`
	LineType      string  `json:"line_type,omitempty"`

	// rectangle
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// circle; Radius is only read from old documents
	RadiusX float64 `json:"radius_x,omitempty"`
	RadiusY float64 `json:"radius_y,omitempty"`
	Radius  float64 `json:"radius,omitempty"`

	// text
	Content    string  `json:"content,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`

	// path, polygon
	Points      []Point `json:"points,omitempty"`
	PolygonType string  `json:"polygon_type,omitempty"`

	// group
	Children []ShapeRecord `json:"children,omitempty"`
}

// DefaultView is the view used for new boards and legacy documents.
func DefaultView() View {
	return View{PanX: 0, PanY: 0, Zoom: 1, GridType: GridNone}
}

// NewEmptyDocument creates an empty board.
func NewEmptyDocument() *Document {
	return &Document{
		View:   DefaultView(),
		Shapes: []ShapeRecord{},
	}
}

// Count returns the number of records in the document, group members included.
func (d *Document) Count() int {
	var walk func([]ShapeRecord) int
	walk = func(recs []ShapeRecord) int {
		n := 0
		for i := range recs {
			n += 1 + walk(recs[i].Children)
		}
		return n
	}
	return walk(d.Shapes)
}
