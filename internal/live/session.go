package live

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kinn00kinn/portfolio/internal/pointer"
	"github.com/kinn00kinn/portfolio/internal/reveal"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer. DOM snapshots carry element ids.
	maxMessageSize = 64 << 10
)

// Inbound message types.
const (
	TypePointer = "pointer"
	TypeHover   = "hover"
	TypeDOM     = "dom"
	TypeSkip    = "skip"
)

// Outbound message types.
const (
	TypeHello    = "hello"
	TypeBoot     = "boot"
	TypeBootDone = "boot_done"
	TypeCursor   = "cursor"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ClientMessage is a message from the page.
type ClientMessage struct {
	Type     string   `json:"type"`
	Kind     string   `json:"kind,omitempty"`
	X        float64  `json:"x,omitempty"`
	Y        float64  `json:"y,omitempty"`
	ID       string   `json:"id,omitempty"`
	Elements []string `json:"elements,omitempty"`
}

// ServerMessage is a message to the page.
type ServerMessage struct {
	Type    string               `json:"type"`
	Session string               `json:"session,omitempty"`
	Boot    *reveal.BootSnapshot `json:"boot,omitempty"`
	Cursor  *pointer.Overlay     `json:"cursor,omitempty"`
}

// Session is one connected page.
type Session struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	doc     *pointer.MemoryDocument
	tracker *pointer.Tracker
	boot    *reveal.Boot

	// lastDOM is the last element snapshot applied, owned by readPump.
	lastDOM []string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// ServeWS upgrades the request and runs the session until the peer leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	s := &Session{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		doc:  pointer.NewMemoryDocument(),
		send: make(chan []byte, 256),
	}
	s.tracker = pointer.NewTracker(s.doc, func(st pointer.State) {
		overlay := pointer.OverlayFor(st)
		s.enqueue(ServerMessage{Type: TypeCursor, Cursor: &overlay})
	})
	s.boot = reveal.NewBoot(h.clock, reveal.BootOptions{
		Random: h.random,
		OnUpdate: func(snap reveal.BootSnapshot) {
			s.enqueue(ServerMessage{Type: TypeBoot, Boot: &snap})
		},
		OnComplete: func() {
			s.enqueue(ServerMessage{Type: TypeBootDone})
		},
	})

	go s.writePump()
	if !h.join(s) {
		s.close()
		return
	}

	s.tracker.Attach()
	s.boot.Start()
	s.enqueue(ServerMessage{Type: TypeHello, Session: s.id})

	s.readPump()
}

// readPump applies page messages until the connection drops.
func (s *Session) readPump() {
	defer s.hub.leave(s)
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Live session %s read error: %v", s.id, err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Live session %s sent malformed message: %v", s.id, err)
			continue
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg ClientMessage) {
	switch msg.Type {
	case TypePointer:
		kind := pointer.EventKind(msg.Kind)
		switch kind {
		case pointer.Move, pointer.Enter, pointer.Leave:
			s.doc.Dispatch(pointer.Event{Kind: kind, X: msg.X, Y: msg.Y})
		}
	case TypeHover:
		kind := pointer.EventKind(msg.Kind)
		if kind == pointer.Enter || kind == pointer.Leave {
			s.doc.DispatchTo(msg.ID, pointer.Event{Kind: kind, X: msg.X, Y: msg.Y})
		}
	case TypeDOM:
		if slices.Equal(msg.Elements, s.lastDOM) {
			return
		}
		s.lastDOM = slices.Clone(msg.Elements)
		s.doc.SetElements(msg.Elements)
	case TypeSkip:
		s.boot.Skip()
	default:
		log.Printf("Live session %s sent unknown message type %q", s.id, msg.Type)
	}
}

// writePump pumps queued messages to the websocket connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues msg for the page, dropping it if the session is closed or
// the peer is too slow to keep up.
func (s *Session) enqueue(msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Live session %s failed to encode %s message: %v", s.id, msg.Type, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- payload:
	default:
		log.Printf("Live session %s send buffer full, dropping %s message", s.id, msg.Type)
	}
}

// close stops the engines and ends the write pump. Safe to call twice.
func (s *Session) close() {
	s.boot.Stop()
	s.tracker.Detach()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
