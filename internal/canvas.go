package internal

// The canvas widget is external; the server treats strokes as opaque
// ordered records. The shapes below only exist so payloads round-trip
// without mutation.

type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
	Type  string  `json:"type,omitempty"`
}

type Stroke struct {
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth int     `json:"strokeWidth"`
	Paths       []Point `json:"paths"`
}
