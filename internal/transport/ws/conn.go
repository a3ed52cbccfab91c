package ws

import (
	"time"

	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	conn     *websocket.Conn
	identity *domain.Identity
	sendMu   chan struct{} // serializes concurrent writers
	closed   chan struct{}
}

func newWsConn(c *websocket.Conn, identity *domain.Identity) *wsConn {
	return &wsConn{
		conn:     c,
		identity: identity,
		sendMu:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

func (c *wsConn) IdentityID() string { return c.identity.ID }

func (c *wsConn) Send(ev chat.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(ev)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
