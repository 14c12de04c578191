package pointer

import "sync"

// MemoryDocument is a Document held in memory. The live session feeds it
// with events forwarded from the browser; tests drive it directly.
type MemoryDocument struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[EventKind]map[uint64]Handler
	elements  []*MemoryElement
	byID      map[string]*MemoryElement
	watchers  map[uint64]func()
}

// MemoryElement is an interactive element of a MemoryDocument.
type MemoryElement struct {
	doc       *MemoryDocument
	id        string
	listeners map[EventKind]map[uint64]Handler
}

// NewMemoryDocument returns an empty document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		listeners: make(map[EventKind]map[uint64]Handler),
		byID:      make(map[string]*MemoryElement),
		watchers:  make(map[uint64]func()),
	}
}

// Subscribe adds a document-level listener.
func (d *MemoryDocument) Subscribe(kind EventKind, h Handler) Unsubscribe {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addLocked(d.listeners, kind, h)
}

// QuerySelectorAll returns the interactive elements in document order. The
// document only holds interactive elements, so every selector matches all.
func (d *MemoryDocument) QuerySelectorAll(string) []Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Element, 0, len(d.elements))
	for _, el := range d.elements {
		out = append(out, el)
	}
	return out
}

// OnSubtreeChanged registers f to run after every SetElements call.
func (d *MemoryDocument) OnSubtreeChanged(f func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.watchers[id] = f
	return func() {
		d.mu.Lock()
		delete(d.watchers, id)
		d.mu.Unlock()
	}
}

// SetElements replaces the interactive element set and notifies subtree
// watchers. Elements that keep their id keep their listeners.
func (d *MemoryDocument) SetElements(ids []string) {
	d.mu.Lock()
	elements := make([]*MemoryElement, 0, len(ids))
	byID := make(map[string]*MemoryElement, len(ids))
	for _, id := range ids {
		if _, dup := byID[id]; dup {
			continue
		}
		el, ok := d.byID[id]
		if !ok {
			el = &MemoryElement{doc: d, id: id, listeners: make(map[EventKind]map[uint64]Handler)}
		}
		elements = append(elements, el)
		byID[id] = el
	}
	d.elements = elements
	d.byID = byID
	watchers := make([]func(), 0, len(d.watchers))
	for _, w := range d.watchers {
		watchers = append(watchers, w)
	}
	d.mu.Unlock()

	for _, w := range watchers {
		w()
	}
}

// Dispatch delivers ev to the document-level listeners of its kind.
func (d *MemoryDocument) Dispatch(ev Event) {
	d.mu.Lock()
	handlers := snapshotHandlers(d.listeners[ev.Kind])
	d.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// DispatchTo delivers ev to the element with id. Unknown ids are ignored.
func (d *MemoryDocument) DispatchTo(id string, ev Event) {
	d.mu.Lock()
	el, ok := d.byID[id]
	var handlers []Handler
	if ok {
		handlers = snapshotHandlers(el.listeners[ev.Kind])
	}
	d.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// ListenerCount returns the number of document-level listeners for kind.
func (d *MemoryDocument) ListenerCount(kind EventKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[kind])
}

// ElementListenerCount returns the number of kind listeners across all
// elements currently in the document.
func (d *MemoryDocument) ElementListenerCount(kind EventKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, el := range d.elements {
		n += len(el.listeners[kind])
	}
	return n
}

// Watchers returns the number of active subtree watchers.
func (d *MemoryDocument) Watchers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.watchers)
}

// ID returns the element id.
func (e *MemoryElement) ID() string { return e.id }

// Subscribe adds a listener on the element.
func (e *MemoryElement) Subscribe(kind EventKind, h Handler) Unsubscribe {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.addLocked(e.listeners, kind, h)
}

// ListenerCount returns the number of kind listeners on the element.
func (e *MemoryElement) ListenerCount(kind EventKind) int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.listeners[kind])
}

// Element returns the element with id, or nil.
func (d *MemoryDocument) Element(id string) *MemoryElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byID[id]
}

func (d *MemoryDocument) addLocked(set map[EventKind]map[uint64]Handler, kind EventKind, h Handler) Unsubscribe {
	if set[kind] == nil {
		set[kind] = make(map[uint64]Handler)
	}
	d.nextID++
	id := d.nextID
	set[kind][id] = h
	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(set[kind], id)
			d.mu.Unlock()
		})
	}
}

func snapshotHandlers(m map[uint64]Handler) []Handler {
	out := make([]Handler, 0, len(m))
	for _, h := range m {
		out = append(out, h)
	}
	return out
}
