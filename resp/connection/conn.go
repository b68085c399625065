package connection

import (
	"net"
	"sync"
	"time"

	"ignix/lib/sync/wait"
)

// Connection wraps a tcp connection at the protocol layer. The output path is
// serialized by mu so concurrent writers cannot interleave reply frames.
type Connection struct {
	conn         net.Conn
	waitingReply wait.Wait
	mu           sync.Mutex
}

// NewConn creates Connection
func NewConn(conn net.Conn) *Connection {
	return &Connection{
		conn: conn,
	}
}

// RemoteAddr returns the remote network address
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close disconnects with the client after in-flight replies finish or time out
func (c *Connection) Close() error {
	c.waitingReply.WaitWithTimeout(10 * time.Second)
	_ = c.conn.Close()
	return nil
}

// Write sends encoded reply bytes to the client
func (c *Connection) Write(bytes []byte) error {
	if len(bytes) == 0 {
		return nil
	}
	c.mu.Lock()
	c.waitingReply.Add(1)
	defer func() {
		c.waitingReply.Done()
		c.mu.Unlock()
	}()
	_, err := c.conn.Write(bytes)
	return err
}
