package reveal

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kinn00kinn/portfolio/internal/clock"
)

// Boot sequence timing.
const (
	ProgressInterval = 100 * time.Millisecond
	LogInterval      = 300 * time.Millisecond
	SettleDelay      = 500 * time.Millisecond
	FailsafeAfter    = 6 * time.Second

	// MaxProgressStep is the largest progress increment applied per tick.
	MaxProgressStep = 15.0
)

// BootScript is the fixed log shown while the boot screen runs.
var BootScript = []string{
	"INITIALIZING SYSTEM...",
	"LOADING KERNEL MODULES...",
	"MOUNTING FILESYSTEM...",
	"CONNECTING TO NEURAL NET...",
	"ESTABLISHING SECURE CONNECTION...",
	"LOADING USER PROFILE...",
	"RENDERING INTERFACE...",
	"SYSTEM READY.",
}

// BootOptions configures a Boot sequence.
type BootOptions struct {
	// Random returns values in [0,1). Defaults to math/rand.
	Random     func() float64
	OnUpdate   func(BootSnapshot)
	OnComplete func()
}

// BootSnapshot is a point-in-time view of a Boot sequence.
type BootSnapshot struct {
	Progress float64  `json:"progress"`
	Percent  int      `json:"percent"`
	Logs     []string `json:"logs"`
	Fading   bool     `json:"fading"`
	Done     bool     `json:"done"`
}

// Boot simulates the loading screen: a jittered progress bar, a scripted
// log, a settle-then-fade finish, a failsafe ceiling and a user skip.
type Boot struct {
	mu       sync.Mutex
	clock    clock.Clock
	random   func() float64
	onUpdate func(BootSnapshot)
	// onComplete is read at call time so the latest callback wins.
	onComplete func()

	progress  float64
	logIndex  int
	logs      []string
	started   bool
	finishing bool
	fading    bool
	done      bool
	stopped   bool

	progressTimer clock.Timer
	logTimer      clock.Timer
	settleTimer   clock.Timer
	failsafeTimer clock.Timer
}

// NewBoot returns an idle Boot sequence. Call Start to begin.
func NewBoot(c clock.Clock, opts BootOptions) *Boot {
	random := opts.Random
	if random == nil {
		random = rand.Float64
	}
	return &Boot{
		clock:      c,
		random:     random,
		onUpdate:   opts.OnUpdate,
		onComplete: opts.OnComplete,
	}
}

// Start arms the progress and log tickers and the failsafe.
func (b *Boot) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started || b.stopped {
		return
	}
	b.started = true
	b.progressTimer = b.clock.AfterFunc(ProgressInterval, b.progressTick)
	b.logTimer = b.clock.AfterFunc(LogInterval, b.logTick)
	b.failsafeTimer = b.clock.AfterFunc(FailsafeAfter, b.failsafe)
}

// SetOnComplete replaces the completion callback without touching timers.
func (b *Boot) SetOnComplete(f func()) {
	b.mu.Lock()
	b.onComplete = f
	b.mu.Unlock()
}

// Skip fades out immediately and completes after the settle delay.
func (b *Boot) Skip() {
	b.mu.Lock()
	if !b.started || b.stopped || b.done || b.fading {
		b.mu.Unlock()
		return
	}
	b.finishing = true
	b.stopTickersLocked()
	stopTimer(&b.settleTimer)
	b.fading = true
	b.settleTimer = b.clock.AfterFunc(SettleDelay, b.complete)
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snap)
}

// Stop cancels every pending timer. Nothing fires afterwards.
func (b *Boot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	b.stopTickersLocked()
	stopTimer(&b.settleTimer)
	stopTimer(&b.failsafeTimer)
}

// Snapshot returns the current state.
func (b *Boot) Snapshot() BootSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Boot) progressTick() {
	b.mu.Lock()
	if b.stopped || b.finishing {
		b.mu.Unlock()
		return
	}
	step := b.random()
	if step < 0 {
		step = 0
	} else if step > 1 {
		step = 1
	}
	b.progress = math.Min(b.progress+step*MaxProgressStep, 100)

	if b.progress >= 100 {
		b.finishing = true
		b.stopTickersLocked()
		b.settleTimer = b.clock.AfterFunc(SettleDelay, b.fade)
	} else {
		b.progressTimer = b.clock.AfterFunc(ProgressInterval, b.progressTick)
	}
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snap)
}

func (b *Boot) logTick() {
	b.mu.Lock()
	if b.stopped || b.finishing || b.logIndex >= len(BootScript) {
		b.mu.Unlock()
		return
	}
	b.logs = append(b.logs, BootScript[b.logIndex])
	b.logIndex++
	if b.logIndex < len(BootScript) {
		b.logTimer = b.clock.AfterFunc(LogInterval, b.logTick)
	} else {
		b.logTimer = nil
	}
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snap)
}

func (b *Boot) fade() {
	b.mu.Lock()
	if b.stopped || b.done || b.fading {
		b.mu.Unlock()
		return
	}
	b.fading = true
	b.settleTimer = b.clock.AfterFunc(SettleDelay, b.complete)
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snap)
}

func (b *Boot) complete() {
	b.mu.Lock()
	b.finishLocked()
}

// failsafe forces the terminal state regardless of progress.
func (b *Boot) failsafe() {
	b.mu.Lock()
	if b.stopped || b.done {
		b.mu.Unlock()
		return
	}
	b.failsafeTimer = nil
	b.finishing = true
	b.fading = true
	b.finishLocked()
}

// finishLocked marks the sequence done and runs the completion callback
// once. It releases b.mu.
func (b *Boot) finishLocked() {
	if b.stopped || b.done {
		b.mu.Unlock()
		return
	}
	b.done = true
	b.stopTickersLocked()
	stopTimer(&b.settleTimer)
	stopTimer(&b.failsafeTimer)
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snap)

	// onUpdate may have stopped the sequence on the final snapshot.
	b.mu.Lock()
	cb := b.onComplete
	stopped := b.stopped
	b.mu.Unlock()
	if cb != nil && !stopped {
		cb()
	}
}

func (b *Boot) stopTickersLocked() {
	stopTimer(&b.progressTimer)
	stopTimer(&b.logTimer)
}

func (b *Boot) snapshotLocked() BootSnapshot {
	percent := int(math.Floor(b.progress))
	if percent > 100 {
		percent = 100
	}
	logs := make([]string, len(b.logs))
	copy(logs, b.logs)
	return BootSnapshot{
		Progress: b.progress,
		Percent:  percent,
		Logs:     logs,
		Fading:   b.fading,
		Done:     b.done,
	}
}

func (b *Boot) publish(snap BootSnapshot) {
	if b.onUpdate == nil {
		return
	}
	b.mu.Lock()
	stopped := b.stopped
	b.mu.Unlock()
	if !stopped {
		b.onUpdate(snap)
	}
}

func stopTimer(t *clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
