package pointer

import "fmt"

// Overlay sizes in CSS pixels.
const (
	DotSize  = 12
	RingSize = 32
)

// Layer is one positioned element of the cursor overlay.
type Layer struct {
	TranslateX float64 `json:"tx"`
	TranslateY float64 `json:"ty"`
	Scale      float64 `json:"scale"`
	Opacity    float64 `json:"opacity"`
	Background string  `json:"background"`
}

// Transform renders the layer as a CSS transform value.
func (l Layer) Transform() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", l.TranslateX, l.TranslateY, l.Scale)
}

// Overlay is the rendered cursor: a dot that shrinks over interactive
// elements and a ring that grows and dims.
type Overlay struct {
	Visible bool  `json:"visible"`
	Dot     Layer `json:"dot"`
	Ring    Layer `json:"ring"`
	// PointerEvents is always "none" so the overlay never takes input.
	PointerEvents string `json:"pointerEvents"`
}

// OverlayFor computes the overlay for s.
func OverlayFor(s State) Overlay {
	dot := Layer{
		TranslateX: s.X - DotSize/2,
		TranslateY: s.Y - DotSize/2,
		Scale:      1,
		Opacity:    1,
		Background: "currentColor",
	}
	ring := Layer{
		TranslateX: s.X - RingSize/2,
		TranslateY: s.Y - RingSize/2,
		Scale:      1,
		Opacity:    1,
		Background: "transparent",
	}
	if s.Hovering {
		dot.Scale = 0.5
		ring.Scale = 1.5
		ring.Opacity = 0.5
		ring.Background = "rgba(255, 255, 255, 0.1)"
	}
	return Overlay{Visible: s.Visible, Dot: dot, Ring: ring, PointerEvents: "none"}
}
