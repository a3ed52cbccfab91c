package chat

import "github.com/samber/lo"

// JoinRoom marks the identity as viewing the conversation. Reports
// false when it was already a member; joining twice is a no-op.
// Authorization against the conversation record happens in the service
// layer before this is called.
func (s *State) JoinRoom(conversationID, identityID string) (joined bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[conversationID]
	if !ok {
		members = make(map[string]struct{})
		s.rooms[conversationID] = members
	}
	if _, ok := members[identityID]; ok {
		return false
	}
	members[identityID] = struct{}{}
	return true
}

// LeaveRoom removes the identity from the room; leaving an unjoined
// room is a no-op, not an error.
func (s *State) LeaveRoom(conversationID, identityID string) (left bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[conversationID]
	if !ok {
		return false
	}
	if _, ok := members[identityID]; !ok {
		return false
	}
	delete(members, identityID)
	if len(members) == 0 {
		delete(s.rooms, conversationID)
	}
	return true
}

func (s *State) IsRoomMember(conversationID, identityID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.rooms[conversationID][identityID]
	return ok
}

func (s *State) RoomMembers(conversationID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Keys(s.rooms[conversationID])
}

// PurgeIdentity removes a fully disconnected identity from every room
// and cancels its typing entries, notifying the remaining members so a
// departed typist's indicator does not linger.
func (s *State) PurgeIdentity(identityID string) {
	s.mu.Lock()
	var stopped []string // conversations where a typing entry was cleared
	for conversationID, members := range s.rooms {
		if _, ok := members[identityID]; !ok {
			continue
		}
		delete(members, identityID)
		if len(members) == 0 {
			delete(s.rooms, conversationID)
		}
	}
	for conversationID, typists := range s.typing {
		e, ok := typists[identityID]
		if !ok {
			continue
		}
		e.timer.Stop()
		delete(typists, identityID)
		if len(typists) == 0 {
			delete(s.typing, conversationID)
		}
		stopped = append(stopped, conversationID)
	}
	s.mu.Unlock()

	for _, conversationID := range stopped {
		s.BroadcastRoom(conversationID, Event{
			Type:    TypeUserStoppedTyping,
			Payload: TypingPayload{ConversationID: conversationID, UserID: identityID},
		}, identityID)
	}
}
