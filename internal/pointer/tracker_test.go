package pointer

import (
	"fmt"
	"testing"
)

func TestTrackerFollowsMoves(t *testing.T) {
	doc := NewMemoryDocument()
	var changes []State
	tr := NewTracker(doc, func(s State) { changes = append(changes, s) })
	tr.Attach()

	if tr.State().Visible {
		t.Fatal("visible before any pointer event")
	}

	doc.Dispatch(Event{Kind: Move, X: 10, Y: 20})
	st := tr.State()
	if !st.Visible || st.X != 10 || st.Y != 20 {
		t.Fatalf("after move got %+v", st)
	}

	doc.Dispatch(Event{Kind: Leave})
	if tr.State().Visible {
		t.Fatal("visible after document leave")
	}
	doc.Dispatch(Event{Kind: Enter})
	if !tr.State().Visible {
		t.Fatal("hidden after document enter")
	}

	if len(changes) != 3 {
		t.Errorf("got %d change notifications, want 3", len(changes))
	}
}

func TestTrackerHover(t *testing.T) {
	doc := NewMemoryDocument()
	doc.SetElements([]string{"link-1", "button-1"})
	tr := NewTracker(doc, nil)
	tr.Attach()

	doc.DispatchTo("button-1", Event{Kind: Enter})
	if !tr.State().Hovering {
		t.Fatal("not hovering after element enter")
	}
	doc.DispatchTo("button-1", Event{Kind: Leave})
	if tr.State().Hovering {
		t.Fatal("still hovering after element leave")
	}
}

func TestTrackerNoDuplicateListenersAcrossMutations(t *testing.T) {
	doc := NewMemoryDocument()
	doc.SetElements([]string{"nav"})
	tr := NewTracker(doc, nil)
	tr.Attach()

	ids := []string{"nav"}
	for i := 0; i < 5; i++ {
		ids = append(ids, fmt.Sprintf("card-%d", i))
		doc.SetElements(ids)
	}
	// Repeated mutations that do not change the set.
	doc.SetElements(ids)
	doc.SetElements(ids)

	n := len(ids)
	if got := doc.ElementListenerCount(Enter); got != n {
		t.Errorf("enter listeners = %d, want %d", got, n)
	}
	if got := doc.ElementListenerCount(Leave); got != n {
		t.Errorf("leave listeners = %d, want %d", got, n)
	}
	for _, id := range ids {
		el := doc.Element(id)
		if el.ListenerCount(Enter) != 1 || el.ListenerCount(Leave) != 1 {
			t.Errorf("%s has %d/%d listeners, want 1/1", id, el.ListenerCount(Enter), el.ListenerCount(Leave))
		}
	}
	if tr.Registered() != n {
		t.Errorf("Registered() = %d, want %d", tr.Registered(), n)
	}
}

func TestTrackerDropsRemovedElements(t *testing.T) {
	doc := NewMemoryDocument()
	doc.SetElements([]string{"a", "b", "c"})
	tr := NewTracker(doc, nil)
	tr.Attach()

	removed := doc.Element("b")
	doc.SetElements([]string{"a", "c"})

	if removed.ListenerCount(Enter) != 0 || removed.ListenerCount(Leave) != 0 {
		t.Error("removed element kept its listeners")
	}
	if tr.Registered() != 2 {
		t.Errorf("Registered() = %d, want 2", tr.Registered())
	}
}

func TestTrackerDetachRemovesEverything(t *testing.T) {
	doc := NewMemoryDocument()
	doc.SetElements([]string{"a", "b"})
	notified := 0
	tr := NewTracker(doc, func(State) { notified++ })
	tr.Attach()
	doc.SetElements([]string{"a", "b", "c"})

	doc.Dispatch(Event{Kind: Move, X: 1, Y: 1})
	frozen := tr.State()
	seen := notified

	tr.Detach()

	for _, kind := range []EventKind{Move, Enter, Leave} {
		if n := doc.ListenerCount(kind); n != 0 {
			t.Errorf("%d document %s listeners after Detach", n, kind)
		}
		if n := doc.ElementListenerCount(kind); n != 0 {
			t.Errorf("%d element %s listeners after Detach", n, kind)
		}
	}
	if doc.Watchers() != 0 {
		t.Errorf("%d subtree watchers after Detach", doc.Watchers())
	}

	doc.Dispatch(Event{Kind: Move, X: 50, Y: 50})
	doc.Dispatch(Event{Kind: Leave})
	doc.DispatchTo("a", Event{Kind: Enter})
	doc.SetElements([]string{"a", "b", "c", "d"})

	if tr.State() != frozen {
		t.Errorf("state changed after Detach: %+v -> %+v", frozen, tr.State())
	}
	if notified != seen {
		t.Errorf("onChange called after Detach")
	}
	if doc.ElementListenerCount(Enter) != 0 {
		t.Error("rescan after Detach re-added listeners")
	}
}

func TestOverlayFor(t *testing.T) {
	o := OverlayFor(State{X: 100, Y: 50, Visible: true})
	if o.Dot.Transform() != "translate(94px, 44px) scale(1)" {
		t.Errorf("dot transform = %q", o.Dot.Transform())
	}
	if o.Ring.Transform() != "translate(84px, 34px) scale(1)" {
		t.Errorf("ring transform = %q", o.Ring.Transform())
	}
	if o.PointerEvents != "none" {
		t.Errorf("pointer events = %q, want none", o.PointerEvents)
	}

	h := OverlayFor(State{X: 100, Y: 50, Visible: true, Hovering: true})
	if h.Dot.Scale != 0.5 || h.Ring.Scale != 1.5 || h.Ring.Opacity != 0.5 {
		t.Errorf("hover overlay = %+v", h)
	}
}
