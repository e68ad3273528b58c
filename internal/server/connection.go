package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/lox/blackjackd/internal/protocol"
)

// Connection is one websocket client and its private table session.
type Connection struct {
	conn       *websocket.Conn
	session    *blackjack.Session
	server     *Server
	send       chan protocol.Response
	logger     *log.Logger
	closeOnce  sync.Once
	lastActive atomic.Int64 // unix nanos of the last request
}

// NewConnection wraps an upgraded websocket connection.
func NewConnection(conn *websocket.Conn, session *blackjack.Session, server *Server, logger *log.Logger) *Connection {
	c := &Connection{
		conn:    conn,
		session: session,
		server:  server,
		send:    make(chan protocol.Response, 16),
		logger:  logger.WithPrefix("conn"),
	}
	c.touch()
	return c
}

// Start begins the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down and unregisters it from the server.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.send)
		err = c.conn.Close()
		c.server.removeConnection(c)
	})
	return err
}

// LastActive returns the time of the last request on this connection.
func (c *Connection) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *Connection) touch() {
	c.lastActive.Store(c.server.clock.Now("conn").UnixNano())
}

// readPump reads requests and dispatches them one at a time, which gives each
// session strictly sequential operations per connection.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	for {
		var req protocol.Request
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		c.touch()

		resp := c.server.dispatch(c.session, req)
		if !c.sendResponse(resp) {
			return
		}
	}
}

// sendResponse queues a response, reporting false when the connection is no
// longer usable. The recover covers the race where the reaper closes the send
// channel between the read and the send.
func (c *Connection) sendResponse(resp protocol.Response) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "recovered", r)
			ok = false
		}
	}()

	select {
	case c.send <- resp:
		return true
	default:
		c.logger.Warn("send buffer full, dropping connection")
		return false
	}
}

// writePump writes queued responses until the send channel closes.
func (c *Connection) writePump() {
	for resp := range c.send {
		if err := c.conn.WriteJSON(resp); err != nil {
			c.logger.Debug("write failed", "error", err)
			return
		}
	}
}
