package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"
)

// in-memory stand-ins for the store and transport collaborators

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []chat.Event
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) IdentityID() string { return c.id }

func (c *fakeConn) Send(ev chat.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) recorded() []chat.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) types() []string {
	var out []string
	for _, ev := range c.recorded() {
		out = append(out, ev.Type)
	}
	return out
}

func (c *fakeConn) lastOfType(typ string) (chat.Event, bool) {
	evs := c.recorded()
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == typ {
			return evs[i], true
		}
	}
	return chat.Event{}, false
}

type fakeConvStore struct {
	mu    sync.Mutex
	seq   int
	convs map[string]*domain.Conversation
}

func newFakeConvStore() *fakeConvStore {
	return &fakeConvStore{convs: make(map[string]*domain.Conversation)}
}

func (f *fakeConvStore) Create(_ context.Context, tenantID, initiatorID, counterpartID string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.convs {
		if c.InitiatorID == initiatorID && c.CounterpartID == counterpartID {
			cp := *c
			return &cp, nil
		}
	}
	f.seq++
	c := &domain.Conversation{
		ID:            fmt.Sprintf("conv-%d", f.seq),
		TenantID:      tenantID,
		InitiatorID:   initiatorID,
		CounterpartID: counterpartID,
		CreatedAt:     time.Now(),
	}
	f.convs[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeConvStore) Get(_ context.Context, id string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConvStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.convs[id]; !ok {
		return domain.ErrConversationNotFound
	}
	delete(f.convs, id)
	return nil
}

type fakeMsgStore struct {
	mu          sync.Mutex
	seq         int
	msgs        []*domain.Message
	createErr   error
	markReadErr error
}

func newFakeMsgStore() *fakeMsgStore { return &fakeMsgStore{} }

func (f *fakeMsgStore) Create(_ context.Context, m *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	m.ID = fmt.Sprintf("msg-%d", f.seq)
	m.CreatedAt = time.Now()
	m.IsRead = false
	m.ReadAt = nil
	cp := *m
	f.msgs = append(f.msgs, &cp)
	return nil
}

func (f *fakeMsgStore) MarkRead(_ context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markReadErr != nil {
		return 0, f.markReadErr
	}
	var n int64
	for _, m := range f.msgs {
		if m.ConversationID == conversationID && m.ReceiverID == readerID && !m.IsRead {
			m.IsRead = true
			t := at
			m.ReadAt = &t
			n++
		}
	}
	return n, nil
}

func (f *fakeMsgStore) CountUnread(_ context.Context, identityID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.msgs {
		if m.ReceiverID == identityID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeMsgStore) List(_ context.Context, conversationID, _ string, limit int) ([]domain.Message, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for i := len(f.msgs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if f.msgs[i].ConversationID == conversationID {
			out = append(out, *f.msgs[i])
		}
	}
	return out, "", nil
}

type fakeIdentStore struct {
	idents map[string]*domain.Identity
}

func (f *fakeIdentStore) Get(_ context.Context, id string) (*domain.Identity, error) {
	ident, ok := f.idents[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	cp := *ident
	return &cp, nil
}

// testEnv wires a full service stack over one seeded conversation
// between alice (initiator) and bob (counterpart).
type testEnv struct {
	state  *chat.State
	convs  *fakeConvStore
	msgs   *fakeMsgStore
	idents *fakeIdentStore

	unread   *UnreadService
	receipts *ReceiptService
	messages *MessageService
	members  *MemberService

	convID string
}

func newTestEnv() *testEnv {
	convs := newFakeConvStore()
	msgs := newFakeMsgStore()
	idents := &fakeIdentStore{idents: map[string]*domain.Identity{
		"alice": {ID: "alice", DisplayName: "Alice", Role: domain.RoleInitiator, TenantID: "t1"},
		"bob":   {ID: "bob", DisplayName: "Bob", Role: domain.RoleCounterpart, TenantID: "t1"},
	}}
	state := chat.NewState(time.Minute)

	conv, _ := convs.Create(context.Background(), "t1", "alice", "bob")

	unread := NewUnreadService(msgs, state)
	receipts := NewReceiptService(convs, msgs, state, unread)
	messages := NewMessageService(convs, msgs, idents, state, unread)
	members := NewMemberService(convs, state, receipts)

	return &testEnv{
		state:    state,
		convs:    convs,
		msgs:     msgs,
		idents:   idents,
		unread:   unread,
		receipts: receipts,
		messages: messages,
		members:  members,
		convID:   conv.ID,
	}
}

func (e *testEnv) connect(id string) *fakeConn {
	c := newFakeConn(id)
	e.state.AddConnection(c)
	return c
}
