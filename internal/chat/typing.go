package chat

import "time"

type typingEntry struct {
	timer *time.Timer
	gen   uint64
}

// StartTyping adds the identity to the conversation's typing set and
// arms the inactivity timer. Typing is an in-room event: it reports
// false when the identity is not viewing the conversation. A repeated
// start only extends the window; the room is notified once per episode.
func (s *State) StartTyping(conversationID, identityID string) bool {
	s.mu.Lock()
	if _, ok := s.rooms[conversationID][identityID]; !ok {
		s.mu.Unlock()
		return false
	}
	typists, ok := s.typing[conversationID]
	if !ok {
		typists = make(map[string]*typingEntry)
		s.typing[conversationID] = typists
	}
	if e, ok := typists[identityID]; ok {
		// a fresh timer per keep-alive: an expiry already in flight
		// carries a stale generation and aborts
		e.timer.Stop()
		e.gen++
		gen := e.gen
		e.timer = time.AfterFunc(s.typingTTL, func() {
			s.expireTyping(conversationID, identityID, gen)
		})
		s.mu.Unlock()
		return true
	}
	e := &typingEntry{}
	e.timer = time.AfterFunc(s.typingTTL, func() {
		s.expireTyping(conversationID, identityID, 0)
	})
	typists[identityID] = e
	targets := s.roomConnsLocked(conversationID, identityID)
	s.mu.Unlock()

	ev := Event{
		Type:    TypeUserTyping,
		Payload: TypingPayload{ConversationID: conversationID, UserID: identityID},
	}
	for _, c := range targets {
		_ = c.Send(ev)
	}
	return true
}

// StopTyping cancels the timer and notifies the rest of the room.
// Idempotent: stopping an identity that is not typing does nothing.
func (s *State) StopTyping(conversationID, identityID string) (stopped bool) {
	s.mu.Lock()
	e, ok := s.typing[conversationID][identityID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e.timer.Stop()
	s.removeTypingLocked(conversationID, identityID)
	targets := s.roomConnsLocked(conversationID, identityID)
	s.mu.Unlock()

	s.notifyStopped(conversationID, identityID, targets)
	return true
}

// expireTyping runs in the timer callback. The generation check makes
// a stale firing harmless: a keep-alive that raced the timer has
// already re-armed under a newer generation.
func (s *State) expireTyping(conversationID, identityID string, gen uint64) {
	s.mu.Lock()
	e, ok := s.typing[conversationID][identityID]
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	s.removeTypingLocked(conversationID, identityID)
	targets := s.roomConnsLocked(conversationID, identityID)
	s.mu.Unlock()

	s.notifyStopped(conversationID, identityID, targets)
}

func (s *State) removeTypingLocked(conversationID, identityID string) {
	typists := s.typing[conversationID]
	delete(typists, identityID)
	if len(typists) == 0 {
		delete(s.typing, conversationID)
	}
}

func (s *State) notifyStopped(conversationID, identityID string, targets []Conn) {
	ev := Event{
		Type:    TypeUserStoppedTyping,
		Payload: TypingPayload{ConversationID: conversationID, UserID: identityID},
	}
	for _, c := range targets {
		_ = c.Send(ev)
	}
}

func (s *State) IsTyping(conversationID, identityID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.typing[conversationID][identityID]
	return ok
}
