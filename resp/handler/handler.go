// Package handler drives the request pipeline for one connection: read bytes
// into the input buffer, decode as many frames as available, execute each
// inline, and flush the encoded replies.
package handler

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"ignix/database"
	databaseinterface "ignix/interface/database"
	"ignix/lib/logger"
	"ignix/lib/sync/atomic"
	"ignix/resp/connection"
	"ignix/resp/parser"
	"ignix/resp/reply"
)

const (
	readBufSize = 4096
	// maxFramesPerPass bounds pipelined commands executed between flushes,
	// so one greedy connection cannot grow its output buffer without bound
	maxFramesPerPass = 64
	// compactThreshold is how far the parse cursor may trail before the
	// consumed prefix of the input buffer is discarded
	compactThreshold = 4096
)

// RespHandler implements tcp.Handler and serves every client connection
type RespHandler struct {
	activeConn sync.Map
	db         databaseinterface.Database
	closing    atomic.Boolean
}

// MakeHandler creates a RespHandler backed by a fresh engine. Building the
// engine replays the aof file, so this runs before any listener opens.
func MakeHandler() *RespHandler {
	return &RespHandler{
		db: database.NewEngine(),
	}
}

func (h *RespHandler) closeClient(client *connection.Connection) {
	_ = client.Close()
	h.db.AfterClientClose(client)
	h.activeConn.Delete(client)
}

// Handle serves one connection until the peer closes, I/O fails, or the
// stream turns malformed.
func (h *RespHandler) Handle(ctx context.Context, conn net.Conn) {
	if h.closing.Get() {
		_ = conn.Close()
		return
	}
	client := connection.NewConn(conn)
	h.activeConn.Store(client, struct{}{})

	// Per-connection buffers, owned by this goroutine only.
	input := make([]byte, 0, readBufSize)
	cursor := 0
	readBuf := make([]byte, readBufSize)
	out := make([]byte, 0, readBufSize)

	for {
		n, err := conn.Read(readBuf)
		if n > 0 {
			input = append(input, readBuf[:n]...)
		}
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				logger.Debug("read error:", err)
			}
			h.closeClient(client)
			logger.Debug("connection closed: " + conn.RemoteAddr().String())
			return
		}

		frames := 0
		for {
			msg, consumed, perr := parser.TryParse(input[cursor:])
			if perr != nil {
				h.abortProtocol(client, out, perr)
				return
			}
			if consumed == 0 {
				break
			}
			cursor += consumed

			switch r := msg.(type) {
			case *reply.MultiBulkReply:
				result := h.db.Exec(client, r.Args)
				if result == nil {
					result = &reply.UnknownErrReply{}
				}
				// The mutation record is already enqueued by Exec;
				// only now do the reply bytes become writable.
				out = append(out, result.ToBytes()...)
			case *reply.EmptyMultiBulkReply:
				// *0 carries no command
			default:
				h.abortProtocol(client, out, &parser.ProtocolError{Msg: "expected array of bulk strings"})
				return
			}

			frames++
			if frames >= maxFramesPerPass {
				if clientErr := client.Write(out); clientErr != nil {
					h.closeClient(client)
					return
				}
				out = out[:0]
				frames = 0
			}
		}

		if len(out) > 0 {
			if clientErr := client.Write(out); clientErr != nil {
				h.closeClient(client)
				return
			}
			out = out[:0]
		}

		// Drop the consumed prefix. Decoded frames alias input, so this
		// only happens after the whole parse pass is executed.
		if cursor == len(input) {
			input = input[:0]
			cursor = 0
		} else if cursor > compactThreshold {
			input = append(input[:0], input[cursor:]...)
			cursor = 0
		}
	}
}

// abortProtocol reports a malformed stream and drops the connection. The
// pending replies and the error are flushed best-effort.
func (h *RespHandler) abortProtocol(client *connection.Connection, out []byte, perr error) {
	msg := perr.Error()
	var pe *parser.ProtocolError
	if errors.As(perr, &pe) {
		msg = pe.Msg
	} else if errors.Is(perr, parser.ErrFrameTooLarge) {
		msg = "frame exceeds size limit"
	}
	if len(out) > 0 {
		_ = client.Write(out)
	}
	_ = client.Write(reply.MakeProtocolErrReply(msg).ToBytes())
	h.closeClient(client)
	logger.Debug("protocol error, connection closed:", msg)
}

// Close shuts down the handler: no new connections are served, live ones are
// closed, then the engine is closed (draining the aof).
func (h *RespHandler) Close() error {
	logger.Info("handler shutting down...")
	h.closing.Set(true)
	h.activeConn.Range(func(key interface{}, value interface{}) bool {
		client := key.(*connection.Connection)
		_ = client.Close()
		return true
	})
	h.db.Close()
	return nil
}
