package tcp

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ignix/lib/config"
	"ignix/resp/handler"
)

func TestEchoServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	closeChan := make(chan struct{})
	done := make(chan struct{})
	go func() {
		ListenAndServe([]net.Listener{listener}, MakeEchoHandler(), closeChan)
		close(done)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for i := 0; i < 3; i++ {
		line := fmt.Sprintf("line %d\n", i)
		_, err = conn.Write([]byte(line))
		require.NoError(t, err)
		echoed, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, line, echoed)
	}

	closeChan <- struct{}{}
	<-done
}

// startRespServer serves the real pipeline on an ephemeral reuse-port
// listener and returns its address plus a shutdown func.
func startRespServer(t *testing.T) (string, func()) {
	t.Helper()
	config.Properties = config.DefaultProperties()
	config.Properties.AppendOnly = false

	listener, err := listenReusePort("127.0.0.1:0")
	require.NoError(t, err)

	closeChan := make(chan struct{})
	done := make(chan struct{})
	go func() {
		ListenAndServe([]net.Listener{listener}, handler.MakeHandler(), closeChan)
		close(done)
	}()
	return listener.Addr().String(), func() {
		closeChan <- struct{}{}
		<-done
	}
}

// The literal end-to-end request/reply byte sequences from the wire contract.
func TestWireScenarios(t *testing.T) {
	addr, shutdown := startRespServer(t)
	defer shutdown()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	steps := []struct {
		send string
		want string
	}{
		{"*1\r\n$4\r\nPING\r\n", "+PONG\r\n"},
		{"*3\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n", "+OK\r\n"},
		{"*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n", "$5\r\nworld\r\n"},
		{"*2\r\n$4\r\nINCR\r\n$1\r\nc\r\n", ":1\r\n"},
		{"*2\r\n$4\r\nINCR\r\n$1\r\nc\r\n", ":2\r\n"},
		{"*2\r\n$4\r\nINCR\r\n$1\r\nc\r\n", ":3\r\n"},
		{"*2\r\n$3\r\nGET\r\n$7\r\nmissing\r\n", "$-1\r\n"},
		{"*3\r\n$6\r\nRENAME\r\n$1\r\na\r\n$1\r\nb\r\n", "-ERR no such key\r\n"},
		{"*3\r\n$4\r\nMSET\r\n$1\r\nx\r\n$1\r\ny\r\n", "+OK\r\n"},
		{"*3\r\n$4\r\nMGET\r\n$1\r\nx\r\n$1\r\nz\r\n", "*2\r\n$1\r\ny\r\n$-1\r\n"},
	}
	for _, step := range steps {
		_, err = conn.Write([]byte(step.send))
		require.NoError(t, err)
		buf := make([]byte, len(step.want))
		_, err = io.ReadFull(conn, buf)
		require.NoError(t, err)
		assert.Equal(t, step.want, string(buf), "request %q", step.send)
	}
}

func TestLargePayloadRoundTrip(t *testing.T) {
	addr, shutdown := startRespServer(t)
	defer shutdown()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))

	payload := make([]byte, 100*1024)
	for i := range payload {
		payload[i] = 'x'
	}
	set := fmt.Sprintf("*3\r\n$3\r\nSET\r\n$5\r\nlarge\r\n$%d\r\n%s\r\n", len(payload), payload)
	_, err = conn.Write([]byte(set))
	require.NoError(t, err)
	buf := make([]byte, 5)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	require.Equal(t, "+OK\r\n", string(buf))

	_, err = conn.Write([]byte("*2\r\n$3\r\nGET\r\n$5\r\nlarge\r\n"))
	require.NoError(t, err)
	want := fmt.Sprintf("$%d\r\n%s\r\n", len(payload), payload)
	got := make([]byte, len(want))
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}
