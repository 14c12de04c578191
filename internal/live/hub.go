// Package live runs per-browser sessions over a websocket: the boot screen
// sequence and the cursor overlay are computed here and pushed to the page.
package live

import (
	"context"
	"log"
	"sync"

	"github.com/kinn00kinn/portfolio/internal/clock"
)

// Hub tracks the open sessions.
type Hub struct {
	clock      clock.Clock
	random     func() float64
	sessions   map[*Session]bool
	register   chan *Session
	unregister chan *Session
	done       chan struct{}
	mu         sync.Mutex
}

// NewHub returns a Hub whose sessions schedule on c. random feeds the boot
// progress; nil uses math/rand.
func NewHub(c clock.Clock, random func() float64) *Hub {
	return &Hub{
		clock:      c,
		random:     random,
		sessions:   make(map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for s := range h.sessions {
				s.close()
				delete(h.sessions, s)
			}
			h.mu.Unlock()
			log.Println("Live hub shutting down")
			return
		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s] = true
			h.mu.Unlock()
			log.Printf("Live session %s connected", s.id)
		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				log.Printf("Live session %s disconnected", s.id)
			}
			h.mu.Unlock()
			s.close()
		}
	}
}

func (h *Hub) join(s *Session) bool {
	select {
	case h.register <- s:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
		s.close()
	}
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
