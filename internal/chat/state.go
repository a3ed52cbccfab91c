package chat

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

// Conn is a transport channel exclusively owned by one identity for
// its lifetime.
type Conn interface {
	IdentityID() string
	Send(ev Event) error
	Close() error
}

// State is the process-local runtime state of the chat core: who is
// connected, who is viewing which conversation, who is typing. It is
// an explicit instance (not a package singleton) so tests and future
// multi-backplane deployments can own their own copy. Nothing here is
// persisted; the store stays the source of truth for messages.
type State struct {
	mu     sync.RWMutex
	conns  map[string]map[Conn]struct{}       // identityID -> live connections
	rooms  map[string]map[string]struct{}     // conversationID -> viewing identities
	typing map[string]map[string]*typingEntry // conversationID -> identityID -> expiry timer

	typingTTL time.Duration
}

const DefaultTypingTTL = 3 * time.Second

func NewState(typingTTL time.Duration) *State {
	if typingTTL <= 0 {
		typingTTL = DefaultTypingTTL
	}
	return &State{
		conns:     make(map[string]map[Conn]struct{}),
		rooms:     make(map[string]map[string]struct{}),
		typing:    make(map[string]map[string]*typingEntry),
		typingTTL: typingTTL,
	}
}

// AddConnection registers a live connection and reports whether it is
// the identity's first one (the online transition).
func (s *State) AddConnection(c Conn) (first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.IdentityID()
	set, ok := s.conns[id]
	if !ok {
		set = make(map[Conn]struct{})
		s.conns[id] = set
	}
	first = len(set) == 0
	set[c] = struct{}{}
	return first
}

// RemoveConnection drops a connection and reports whether it was the
// identity's last one. An identity with another tab still open stays
// online; the entry is destroyed only when the set becomes empty.
func (s *State) RemoveConnection(c Conn) (last bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.IdentityID()
	set, ok := s.conns[id]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(s.conns, id)
		return true
	}
	return false
}

func (s *State) IsOnline(identityID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns[identityID]) > 0
}

func (s *State) Connections(identityID string) []Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Keys(s.conns[identityID])
}

// SendTo delivers to every connection of the identity's personal
// channel, best-effort. A receiver with no live connection is a no-op.
func (s *State) SendTo(identityID string, ev Event) {
	s.mu.RLock()
	targets := lo.Keys(s.conns[identityID])
	s.mu.RUnlock()

	for _, c := range targets {
		_ = c.Send(ev)
	}
}

// BroadcastAll fans out to every live connection. Used for presence
// transitions; see the note on over-broadcast scope in DESIGN.md.
func (s *State) BroadcastAll(ev Event) {
	s.mu.RLock()
	var targets []Conn
	for _, set := range s.conns {
		targets = append(targets, lo.Keys(set)...)
	}
	s.mu.RUnlock()

	for _, c := range targets {
		_ = c.Send(ev)
	}
}

// BroadcastRoom fans out to every connection of every identity
// currently viewing the conversation, minus excluded identities.
func (s *State) BroadcastRoom(conversationID string, ev Event, exclude ...string) {
	s.mu.RLock()
	targets := s.roomConnsLocked(conversationID, exclude...)
	s.mu.RUnlock()

	for _, c := range targets {
		_ = c.Send(ev)
	}
}

// roomConnsLocked snapshots the room's connections; callers hold s.mu.
func (s *State) roomConnsLocked(conversationID string, exclude ...string) []Conn {
	members, ok := s.rooms[conversationID]
	if !ok {
		return nil
	}
	var targets []Conn
	for id := range members {
		if lo.Contains(exclude, id) {
			continue
		}
		targets = append(targets, lo.Keys(s.conns[id])...)
	}
	return targets
}
