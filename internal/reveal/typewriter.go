// Package reveal drives timed, cancellable reveal sequences: the typewriter
// text effect and the boot-screen progress simulation.
package reveal

import (
	"sync"
	"time"

	"github.com/kinn00kinn/portfolio/internal/clock"
)

const (
	// DefaultSpeed is the per-character delay used when Options.Speed is zero.
	DefaultSpeed = 50 * time.Millisecond

	// MinDelay is the shortest interval any reveal timer is scheduled with.
	MinDelay = time.Millisecond

	// CursorGlyph is appended to an incomplete reveal when the cursor is shown.
	CursorGlyph = "_"
)

// Options configures a Typewriter.
type Options struct {
	Speed      time.Duration
	StartDelay time.Duration
	HideCursor bool

	// OnUpdate is called after every state change, outside the engine lock.
	OnUpdate func(TypewriterState)
	// OnComplete is called once each time a target is fully revealed.
	OnComplete func()
}

// TypewriterState is a point-in-time view of a Typewriter.
type TypewriterState struct {
	Text     string `json:"text"`
	Revealed int    `json:"revealed"`
	Total    int    `json:"total"`
	Done     bool   `json:"done"`
	Cursor   bool   `json:"cursor"`
}

// Render returns the revealed text with the cursor glyph while incomplete.
func (s TypewriterState) Render() string {
	if s.Cursor && !s.Done {
		return s.Text + CursorGlyph
	}
	return s.Text
}

// Typewriter reveals a target string one rune per tick.
type Typewriter struct {
	mu         sync.Mutex
	clock      clock.Clock
	speed      time.Duration
	startDelay time.Duration
	cursor     bool
	onUpdate   func(TypewriterState)
	onComplete func()

	target   []rune
	revealed int
	done     bool
	running  bool
	stopped  bool
	gen      uint64
	timer    clock.Timer
}

// NewTypewriter returns an idle Typewriter for text. Call Start to begin.
func NewTypewriter(c clock.Clock, text string, opts Options) *Typewriter {
	speed := opts.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	if speed < MinDelay {
		speed = MinDelay
	}
	startDelay := opts.StartDelay
	if startDelay < 0 {
		startDelay = 0
	}
	return &Typewriter{
		clock:      c,
		speed:      speed,
		startDelay: startDelay,
		cursor:     !opts.HideCursor,
		onUpdate:   opts.OnUpdate,
		onComplete: opts.OnComplete,
		target:     []rune(text),
	}
}

// Start begins revealing after the start delay. Calling Start on a running
// or stopped Typewriter has no effect.
func (t *Typewriter) Start() {
	t.mu.Lock()
	if t.running || t.stopped {
		t.mu.Unlock()
		return
	}
	t.running = true
	completed := t.restartLocked()
	gen := t.gen
	state := t.stateLocked()
	t.mu.Unlock()

	t.notify(gen, state, completed)
}

// SetText replaces the target. A different target resets the reveal to
// empty and restarts timing, start delay included.
func (t *Typewriter) SetText(text string) {
	t.mu.Lock()
	if t.stopped || string(t.target) == text {
		t.mu.Unlock()
		return
	}
	t.target = []rune(text)
	if !t.running {
		t.revealed = 0
		t.done = false
		t.mu.Unlock()
		return
	}
	completed := t.restartLocked()
	gen := t.gen
	state := t.stateLocked()
	t.mu.Unlock()

	t.notify(gen, state, completed)
}

// Stop cancels any pending tick. No state changes or callbacks happen afterwards.
func (t *Typewriter) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// State returns the current snapshot.
func (t *Typewriter) State() TypewriterState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Done reports whether the current target is fully revealed.
func (t *Typewriter) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// restartLocked resets the reveal and schedules the first step. It reports
// whether the target completed immediately (empty text).
func (t *Typewriter) restartLocked() bool {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.revealed = 0
	t.done = false

	if len(t.target) == 0 {
		t.done = true
		return true
	}

	gen := t.gen
	if t.startDelay > 0 {
		t.timer = t.clock.AfterFunc(t.startDelay, func() { t.begin(gen) })
	} else {
		t.timer = t.clock.AfterFunc(t.speed, func() { t.tick(gen) })
	}
	return false
}

func (t *Typewriter) begin(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.stopped {
		return
	}
	t.timer = t.clock.AfterFunc(t.speed, func() { t.tick(gen) })
}

func (t *Typewriter) tick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.stopped || t.done {
		t.mu.Unlock()
		return
	}
	t.revealed++
	completed := false
	if t.revealed >= len(t.target) {
		t.revealed = len(t.target)
		t.done = true
		t.timer = nil
		completed = true
	} else {
		t.timer = t.clock.AfterFunc(t.speed, func() { t.tick(gen) })
	}
	state := t.stateLocked()
	t.mu.Unlock()

	t.notify(gen, state, completed)
}

func (t *Typewriter) stateLocked() TypewriterState {
	return TypewriterState{
		Text:     string(t.target[:t.revealed]),
		Revealed: t.revealed,
		Total:    len(t.target),
		Done:     t.done,
		Cursor:   t.cursor,
	}
}

// notify runs the observers outside the lock. Each call re-checks that the
// reveal was neither stopped nor retargeted, including by onUpdate itself.
func (t *Typewriter) notify(gen uint64, state TypewriterState, completed bool) {
	if t.onUpdate != nil && t.current(gen) {
		t.onUpdate(state)
	}
	if completed && t.onComplete != nil && t.current(gen) {
		t.onComplete()
	}
}

func (t *Typewriter) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen && !t.stopped
}
