// Package pointer mirrors live pointer position and hover state into a
// purely visual cursor overlay.
package pointer

// EventKind names a pointer event.
type EventKind string

const (
	Move  EventKind = "move"
	Enter EventKind = "enter"
	Leave EventKind = "leave"
)

// InteractiveSelector matches the elements whose hover drives the overlay.
const InteractiveSelector = `a, button, input, textarea, [role="button"]`

// Event is a single pointer notification.
type Event struct {
	Kind EventKind `json:"kind"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// Handler receives events from an EventTarget.
type Handler func(Event)

// Unsubscribe removes the listener it was returned for.
type Unsubscribe func()

// EventTarget delivers events of a kind to subscribed handlers.
type EventTarget interface {
	Subscribe(kind EventKind, h Handler) Unsubscribe
}

// Element is an EventTarget inside a Document with a stable identity.
type Element interface {
	EventTarget
	ID() string
}

// Document is the document-level event source plus element lookup and
// subtree change notification.
type Document interface {
	EventTarget
	QuerySelectorAll(selector string) []Element
	// OnSubtreeChanged calls f after nodes are inserted or removed anywhere
	// in the document. The returned func stops the notifications.
	OnSubtreeChanged(f func()) (disconnect func())
}

// State is the tracker's view of the pointer.
type State struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Visible  bool    `json:"visible"`
	Hovering bool    `json:"hovering"`
}
