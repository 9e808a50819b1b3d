package ui

import (
	"net/http"
	"sync"
	"time"

	log "log/slog"

	"github.com/gorilla/websocket"
)

const backlogSize = 20

// Status is one progress or outcome message pushed to open pages. Replay
// marks backlog messages sent to a page when it connects.
type Status struct {
	Kind   string    `json:"kind"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
	Replay bool      `json:"replay,omitempty"`
}

// Feed fans status messages out to every connected page over websocket.
// New connections first receive the recent backlog.
type Feed struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	backlog []Status
}

func NewFeed() *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (f *Feed) Report(kind, text string) {
	f.Publish(Status{Kind: kind, Text: text, At: time.Now()})
}

func (f *Feed) Publish(st Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.backlog = append(f.backlog, st)
	if len(f.backlog) > backlogSize {
		f.backlog = f.backlog[len(f.backlog)-backlogSize:]
	}

	for conn := range f.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteJSON(st); err != nil {
			log.Debug("Dropping feed client", "remote", conn.RemoteAddr(), "err", err)
			conn.Close()
			delete(f.clients, conn)
		}
	}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Failed to upgrade feed connection", "err", err)
		return
	}

	f.mu.Lock()
	for _, st := range f.backlog {
		st.Replay = true
		if err := conn.WriteJSON(st); err != nil {
			f.mu.Unlock()
			conn.Close()
			return
		}
	}
	f.clients[conn] = struct{}{}
	f.mu.Unlock()

	// the page never sends anything; reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.mu.Lock()
	if _, ok := f.clients[conn]; ok {
		delete(f.clients, conn)
		conn.Close()
	}
	f.mu.Unlock()
}
