package network

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
)

// wsConn adapts a websocket connection to room.Conn. Writes are serialized
// because both the room goroutine and the reader goroutine send.
type wsConn struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Send(b []byte) error {
	return c.write(websocket.TextMessage, b)
}

func (c *wsConn) ping() error {
	return c.write(websocket.PingMessage, nil)
}

func (c *wsConn) write(messageType int, b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, b)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// pingLoop keeps the connection alive until done is closed or a ping fails.
func (c *wsConn) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
