package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"giveget/pkg/logger"
	"giveget/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Conn is the part of *websocket.Conn the pumps use.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live feed connection.
type Client struct {
	UserID string
	Conn   Conn
	send   chan []byte
	done   chan struct{}
	closed bool
	mutex  sync.Mutex
}

func NewClient(userID string, conn Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

// Enqueue queues a frame without blocking; a slow client loses frames, not
// the connection, since every frame is a full view.
func (c *Client) Enqueue(message []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Done is closed once the read side of the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Manager tracks open feed connections.
type Manager struct {
	clients    map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	stopped    chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Start runs the registration loop until ctx ends, then closes every client.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client] = struct{}{}
				m.mutex.Unlock()
				metrics.FeedConnections.Inc()
				logger.Debug("Feed client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client]; ok {
					delete(m.clients, client)
					client.close()
					metrics.FeedConnections.Dec()
				}
				m.mutex.Unlock()
				logger.Debug("Feed client unregistered: %s", client.UserID)

			case <-ctx.Done():
				close(m.stopped)
				m.mutex.Lock()
				for client := range m.clients {
					delete(m.clients, client)
					client.close()
					metrics.FeedConnections.Dec()
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

// Add registers c with the running manager. It reports false once the
// manager has stopped, in which case c is never tracked.
func (m *Manager) Add(c *Client) bool {
	select {
	case m.Register <- c:
		return true
	case <-m.stopped:
		c.close()
		return false
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump delivers inbound frames to onMessage until the peer goes away,
// then unregisters the client.
func (c *Client) ReadPump(m *Manager, onMessage func([]byte)) {
	defer func() {
		close(c.done)
		select {
		case m.Unregister <- c:
		case <-m.stopped:
			c.close()
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Feed connection for %s closed: %v", c.UserID, err)
			}
			return
		}
		onMessage(message)
	}
}

// WritePump drains queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Feed write to %s failed: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
