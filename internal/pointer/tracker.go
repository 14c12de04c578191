package pointer

import "sync"

// Tracker follows the pointer across a Document. It only observes: handlers
// never stop propagation or alter the document.
type Tracker struct {
	mu       sync.Mutex
	doc      Document
	onChange func(State)

	state      State
	registry   *Registry
	docSubs    []Unsubscribe
	disconnect func()
	attached   bool
	detached   bool
}

// NewTracker returns a Tracker for doc. onChange, if non-nil, receives every
// new state outside the tracker lock.
func NewTracker(doc Document, onChange func(State)) *Tracker {
	return &Tracker{
		doc:      doc,
		onChange: onChange,
		registry: NewRegistry(),
	}
}

// Attach subscribes to the document, registers the current interactive
// elements and starts watching for subtree changes.
func (t *Tracker) Attach() {
	t.mu.Lock()
	if t.attached || t.detached {
		t.mu.Unlock()
		return
	}
	t.attached = true
	t.docSubs = []Unsubscribe{
		t.doc.Subscribe(Move, t.handleMove),
		t.doc.Subscribe(Enter, t.handleDocEnter),
		t.doc.Subscribe(Leave, t.handleDocLeave),
	}
	t.registry.Sync(t.doc.QuerySelectorAll(InteractiveSelector), t.handleHoverEnter, t.handleHoverLeave)
	t.mu.Unlock()

	disconnect := t.doc.OnSubtreeChanged(t.rescan)

	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		disconnect()
		return
	}
	t.disconnect = disconnect
	t.mu.Unlock()
}

// Detach removes every listener the tracker added and stops the subtree
// watcher. The state is frozen afterwards.
func (t *Tracker) Detach() {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return
	}
	t.detached = true
	for _, unsub := range t.docSubs {
		unsub()
	}
	t.docSubs = nil
	t.registry.Clear()
	disconnect := t.disconnect
	t.disconnect = nil
	t.mu.Unlock()

	if disconnect != nil {
		disconnect()
	}
}

// State returns the current pointer state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Registered returns the number of interactive elements being watched.
func (t *Tracker) Registered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Len()
}

func (t *Tracker) rescan() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detached {
		return
	}
	t.registry.Sync(t.doc.QuerySelectorAll(InteractiveSelector), t.handleHoverEnter, t.handleHoverLeave)
}

func (t *Tracker) handleMove(ev Event) {
	t.update(func(s *State) {
		s.X, s.Y = ev.X, ev.Y
		s.Visible = true
	})
}

func (t *Tracker) handleDocEnter(Event) {
	t.update(func(s *State) { s.Visible = true })
}

func (t *Tracker) handleDocLeave(Event) {
	t.update(func(s *State) { s.Visible = false })
}

func (t *Tracker) handleHoverEnter(Event) {
	t.update(func(s *State) { s.Hovering = true })
}

func (t *Tracker) handleHoverLeave(Event) {
	t.update(func(s *State) { s.Hovering = false })
}

func (t *Tracker) update(mutate func(*State)) {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return
	}
	prev := t.state
	mutate(&t.state)
	next := t.state
	t.mu.Unlock()

	if next != prev && t.onChange != nil {
		t.onChange(next)
	}
}
