package chat

import (
	"container/list"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"secrm-eiga.dev/web/internal/metrics"
	"secrm-eiga.dev/web/internal/pipeline"
)

// Senders recorded in a transcript.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ErrEmptyMessage is returned when a blank message is appended.
var ErrEmptyMessage = errors.New("chat: empty message")

// Entry is one recorded chat message.
type Entry struct {
	ID        string                   `json:"-"`
	Message   string                   `json:"message"`
	Sender    string                   `json:"sender"`
	Timestamp time.Time                `json:"timestamp"`
	Data      *pipeline.AnalysisResult `json:"data"`
}

// Export is the downloadable transcript document.
type Export struct {
	Timestamp string  `json:"timestamp"`
	History   []Entry `json:"history"`
}

// Transcript is an append-only, in-memory chat log for one browser session.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
}

// Append records a message. data is attached to AI replies that came from a
// successful analysis and is nil otherwise.
func (t *Transcript) Append(sender, message string, data *pipeline.AnalysisResult, at time.Time) (Entry, error) {
	if strings.TrimSpace(message) == "" {
		return Entry{}, ErrEmptyMessage
	}
	if at.IsZero() {
		at = time.Now()
	}
	e := Entry{
		ID:        ulid.Make().String(),
		Message:   message,
		Sender:    sender,
		Timestamp: at.UTC(),
		Data:      data,
	}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
	metrics.ObserveChatMessage(sender)
	return e, nil
}

// Entries returns a copy of the recorded messages in chronological order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len reports the number of recorded messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.entries = nil
	t.mu.Unlock()
}

// Export serialises the transcript as indented JSON stamped with now.
func (t *Transcript) Export(now time.Time) ([]byte, error) {
	doc := Export{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		History:   t.Entries(),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ExportFilename is the download name for a transcript exported at now.
func ExportFilename(now time.Time) string {
	return "secrm-eiga-chat-" + now.UTC().Format("2006-01-02") + ".json"
}

// Store holds one transcript per session id, evicting the least recently used
// session once MaxSessions is exceeded.
type Store struct {
	mu          sync.Mutex
	maxSessions int
	order       *list.List
	items       map[string]*list.Element
}

type storeItem struct {
	id         string
	transcript *Transcript
}

// NewStore creates a store bounded to maxSessions (0 means 1000).
func NewStore(maxSessions int) *Store {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	return &Store{
		maxSessions: maxSessions,
		order:       list.New(),
		items:       make(map[string]*list.Element),
	}
}

// Get returns the transcript for id, creating it if needed.
func (s *Store) Get(id string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[id]; ok {
		s.order.MoveToFront(el)
		return el.Value.(*storeItem).transcript
	}
	item := &storeItem{id: id, transcript: &Transcript{}}
	s.items[id] = s.order.PushFront(item)
	for s.order.Len() > s.maxSessions {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*storeItem).id)
	}
	return item.transcript
}

// Drop forgets the transcript for id.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[id]; ok {
		s.order.Remove(el)
		delete(s.items, id)
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
