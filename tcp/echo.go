package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"ignix/lib/logger"
	"ignix/lib/sync/atomic"
	"ignix/lib/sync/wait"
)

// EchoClient is a client of EchoHandler, used to test the listener machinery
type EchoClient struct {
	Conn    net.Conn
	Waiting wait.Wait
}

// Close waits for pending work then closes the connection
func (c *EchoClient) Close() error {
	c.Waiting.WaitWithTimeout(10 * time.Second)
	_ = c.Conn.Close()
	return nil
}

// EchoHandler echoes received lines back to the client
type EchoHandler struct {
	activeConn sync.Map
	closing    atomic.Boolean
}

// MakeEchoHandler creates EchoHandler
func MakeEchoHandler() *EchoHandler {
	return &EchoHandler{}
}

// Handle echoes received lines to the client
func (h *EchoHandler) Handle(ctx context.Context, conn net.Conn) {
	if h.closing.Get() {
		_ = conn.Close()
		return
	}
	client := &EchoClient{
		Conn: conn,
	}
	h.activeConn.Store(client, struct{}{})

	reader := bufio.NewReader(conn)
	for {
		msg, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				logger.Debug("connection closed: " + conn.RemoteAddr().String())
				h.activeConn.Delete(client)
			} else {
				logger.Warn(err)
			}
			return
		}
		client.Waiting.Add(1)
		_, _ = conn.Write([]byte(msg))
		client.Waiting.Done()
	}
}

// Close stops the handler and every live client
func (h *EchoHandler) Close() error {
	logger.Info("echo handler shutting down...")
	h.closing.Set(true)
	h.activeConn.Range(func(key, value interface{}) bool {
		client := key.(*EchoClient)
		_ = client.Conn.Close()
		return true
	})
	return nil
}
