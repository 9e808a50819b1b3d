package ui

import (
	"sync"
	"time"
)

// Entry is one row of the page's reminder list.
type Entry struct {
	Event     string
	EventAt   time.Time
	Recipient string
}

// Session is the process-lifetime page state. The list is append-only and
// only used for display.
type Session struct {
	mu      sync.Mutex
	entries []Entry
}

func NewSession() *Session { return &Session{} }

func (s *Session) Add(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}
