package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/peertalk/chat-service/internal/auth"
	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"
	"github.com/peertalk/chat-service/internal/service"

	"github.com/gorilla/websocket"
)

type Server struct {
	upgrader websocket.Upgrader
	gateway  *auth.Gateway
	state    *chat.State

	members  *service.MemberService
	messages *service.MessageService
	receipts *service.ReceiptService
	unread   *service.UnreadService

	pingEvery time.Duration
}

func NewServer(
	gateway *auth.Gateway,
	state *chat.State,
	members *service.MemberService,
	messages *service.MessageService,
	receipts *service.ReceiptService,
	unread *service.UnreadService,
) *Server {
	return &Server{
		gateway:  gateway,
		state:    state,
		members:  members,
		messages: messages,
		receipts: receipts,
		unread:   unread,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws?token=...
// The credential is resolved before the upgrade: a refused connection
// leaves no presence entry and no channel behind.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ident, err := s.gateway.Authenticate(r.Context(), auth.ExtractToken(r))
	if err != nil {
		slog.Debug("ws auth refused", "err", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "user", ident.ID, "err", err)
		return
	}

	c := newWsConn(conn, ident)
	if first := s.state.AddConnection(c); first {
		// only the first device flips the identity online
		s.state.BroadcastAll(chat.Event{
			Type:    chat.TypeUserOnlineStatus,
			Payload: chat.OnlineStatusPayload{UserID: ident.ID, Online: true},
		})
	}

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	if last := s.state.RemoveConnection(c); last {
		// another open tab keeps the identity online; only the last
		// disconnect purges rooms/typing and announces offline
		s.state.PurgeIdentity(ident.ID)
		s.state.BroadcastAll(chat.Event{
			Type:    chat.TypeUserOffline,
			Payload: chat.OnlineStatusPayload{UserID: ident.ID, Online: false},
		})
	}

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "user", ident.ID, "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendError(c, "malformed envelope")
			continue
		}
		s.dispatch(ctx, c, env)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// dispatch translates envelope events into operations on the core
// components; every handler answers the caller only on failure.
func (s *Server) dispatch(ctx context.Context, c *wsConn, env envelope) {
	identityID := c.identity.ID

	switch env.Type {
	case chat.TypeJoinConversation:
		var p conversationRef
		if !s.decode(c, env.Payload, &p) {
			return
		}
		if err := s.members.Join(ctx, p.ConversationID, identityID); err != nil {
			s.fail(c, env.Type, err)
			return
		}
		_ = c.Send(chat.Event{
			Type:    chat.TypeJoinedConversation,
			Payload: chat.AckPayload{ConversationID: p.ConversationID},
		})

	case chat.TypeLeaveConversation:
		var p conversationRef
		if !s.decode(c, env.Payload, &p) {
			return
		}
		_ = s.members.Leave(ctx, p.ConversationID, identityID)
		_ = c.Send(chat.Event{
			Type:    chat.TypeLeftConversation,
			Payload: chat.AckPayload{ConversationID: p.ConversationID},
		})

	case chat.TypeSendMessage:
		var p sendMessageRequest
		if !s.decode(c, env.Payload, &p) {
			return
		}
		if _, err := s.messages.Send(ctx, p.ConversationID, identityID, p.ReceiverID, p.MessageText); err != nil {
			s.fail(c, env.Type, err)
		}

	case chat.TypeMarkAsRead:
		var p conversationRef
		if !s.decode(c, env.Payload, &p) {
			return
		}
		if _, err := s.receipts.MarkRead(ctx, p.ConversationID, identityID); err != nil {
			s.fail(c, env.Type, err)
		}

	case chat.TypeTyping:
		var p conversationRef
		if !s.decode(c, env.Payload, &p) {
			return
		}
		if !s.state.StartTyping(p.ConversationID, identityID) {
			s.fail(c, env.Type, domain.ErrNotParticipant)
		}

	case chat.TypeStopTyping:
		var p conversationRef
		if !s.decode(c, env.Payload, &p) {
			return
		}
		s.state.StopTyping(p.ConversationID, identityID)

	case chat.TypeCheckOnlineStatus:
		var p onlineStatusRequest
		if !s.decode(c, env.Payload, &p) {
			return
		}
		_ = c.Send(chat.Event{
			Type: chat.TypeUserOnlineStatus,
			Payload: chat.OnlineStatusPayload{
				UserID: p.UserID,
				Online: s.state.IsOnline(p.UserID),
			},
		})

	case chat.TypeGetUnreadCount:
		n, err := s.unread.Count(ctx, identityID)
		if err != nil {
			s.fail(c, env.Type, err)
			return
		}
		_ = c.Send(chat.Event{
			Type:    chat.TypeUnreadCountUpdated,
			Payload: chat.UnreadCountPayload{Count: n},
		})

	default:
		s.sendError(c, "unknown event type")
	}
}

func (s *Server) decode(c *wsConn, raw json.RawMessage, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		s.sendError(c, "malformed payload")
		return false
	}
	return true
}

// fail surfaces the error to the caller only; store internals stay in
// the logs.
func (s *Server) fail(c *wsConn, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrBadReceiver),
		errors.Is(err, domain.ErrConversationNotFound):
		s.sendError(c, err.Error())
	default:
		slog.Error("ws op failed", "op", op, "user", c.identity.ID, "err", err)
		s.sendError(c, "internal error")
	}
}

func (s *Server) sendError(c *wsConn, msg string) {
	_ = c.Send(chat.Event{Type: chat.TypeError, Payload: chat.ErrorPayload{Message: msg}})
}
