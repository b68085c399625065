// Package aof persists mutations as concatenated RESP command arrays and
// replays them at startup. A single writer goroutine owns the file; producers
// enqueue records through a bounded channel and block when it is full, so
// memory stays bounded and pressure reaches the clients.
package aof

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"ignix/interface/database"
	"ignix/lib/config"
	"ignix/lib/logger"
	"ignix/lib/sync/atomic"
	"ignix/resp/connection"
	"ignix/resp/parser"
	"ignix/resp/reply"
)

const (
	defaultQueueSize = 1 << 16
	// aofBatchSize bounds how many queued records one wakeup drains
	aofBatchSize = 64
	// writeThreshold flushes the in-memory buffer to the OS once it holds
	// this many bytes, without waiting for a timer
	writeThreshold = 64 * 1024
	// flushInterval bounds how long a record can sit in the buffer
	flushInterval = 100 * time.Millisecond

	maxWriteRetries   = 5
	writeRetryBackoff = 50 * time.Millisecond
)

// CmdLine is alias for [][]byte, represents a command line
type CmdLine = [][]byte

// AofHandler receives mutation records through a bounded channel and appends
// them to the aof file, fsyncing on a timer. A reply to a client only
// guarantees its record was enqueued; records inside the current fsync window
// may be lost on crash.
type AofHandler struct {
	database      database.Database
	aofChan       chan CmdLine
	aofFile       *os.File
	aofFilename   string
	fsyncInterval time.Duration
	closing       atomic.Boolean
	done          chan struct{}
}

// NewAofHandler replays the existing aof file through db, then opens the file
// for appending and starts the writer goroutine.
func NewAofHandler(db database.Database) (*AofHandler, error) {
	handler := &AofHandler{}
	handler.aofFilename = config.Properties.AppendFilename
	handler.database = db
	handler.fsyncInterval = time.Duration(config.Properties.AofFsyncIntervalMs) * time.Millisecond
	if handler.fsyncInterval <= 0 {
		handler.fsyncInterval = time.Second
	}
	if err := handler.LoadAof(); err != nil {
		return nil, err
	}
	aofFile, err := os.OpenFile(handler.aofFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	handler.aofFile = aofFile
	queueSize := config.Properties.AofQueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	handler.aofChan = make(chan CmdLine, queueSize)
	handler.done = make(chan struct{})
	go handler.handleAof()
	return handler, nil
}

// AddAof enqueues an owned copy of one mutation record, so callers may reuse
// the argument buffers as soon as it returns. It blocks while the queue is
// full; callers must not hold dictionary shard locks here.
func (handler *AofHandler) AddAof(cmdLine CmdLine) {
	if handler.aofChan == nil || handler.closing.Get() {
		return
	}
	owned := make(CmdLine, len(cmdLine))
	for i, arg := range cmdLine {
		owned[i] = make([]byte, len(arg))
		copy(owned[i], arg)
	}
	handler.aofChan <- owned
}

// handleAof drains records in batches, buffers their encoding, writes the
// buffer out on size or timer, and fsyncs every fsyncInterval.
func (handler *AofHandler) handleAof() {
	defer close(handler.done)
	syncTicker := time.NewTicker(handler.fsyncInterval)
	defer syncTicker.Stop()
	flushTicker := time.NewTicker(flushInterval)
	defer flushTicker.Stop()

	var buf bytes.Buffer
	for {
		select {
		case p, ok := <-handler.aofChan:
			if !ok {
				handler.shutdown(&buf)
				return
			}
			buf.Write(reply.MakeMultiBulkReply(p).ToBytes())
		drain:
			for i := 1; i < aofBatchSize; i++ {
				select {
				case p, ok = <-handler.aofChan:
					if !ok {
						handler.shutdown(&buf)
						return
					}
					buf.Write(reply.MakeMultiBulkReply(p).ToBytes())
				default:
					break drain
				}
			}
			if buf.Len() >= writeThreshold {
				handler.writeOut(&buf)
			}
		case <-flushTicker.C:
			handler.writeOut(&buf)
		case <-syncTicker.C:
			handler.writeOut(&buf)
			handler.syncFile()
		}
	}
}

// shutdown performs the final write and fsync after the channel is drained
func (handler *AofHandler) shutdown(buf *bytes.Buffer) {
	handler.writeOut(buf)
	handler.syncFile()
}

// writeOut appends the buffered records to the file in one write call.
// Transient failures are retried with backoff; a persistent failure ends the
// process rather than silently dropping acknowledged mutations.
func (handler *AofHandler) writeOut(buf *bytes.Buffer) {
	if buf.Len() == 0 {
		return
	}
	var err error
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(writeRetryBackoff << uint(attempt-1))
		}
		_, err = handler.aofFile.Write(buf.Bytes())
		if err == nil {
			buf.Reset()
			return
		}
		logger.Error("aof write failed:", err)
	}
	logger.Fatal("aof: persistent write failure, shutting down:", err)
}

func (handler *AofHandler) syncFile() {
	if err := handler.aofFile.Sync(); err != nil {
		logger.Error("aof fsync failed:", err)
	}
}

// LoadAof reads the aof file front-to-back and executes each command array
// against the database. A truncated trailing record is discarded with a
// warning; a file whose very first record is corrupt is a startup error.
func (handler *AofHandler) LoadAof() error {
	file, err := os.Open(handler.aofFilename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	fakeConn := connection.NewFakeConn()
	applied := 0
	ch := parser.ParseStream(file)
	for p := range ch {
		if p.Err != nil {
			if errors.Is(p.Err, io.EOF) {
				break
			}
			if errors.Is(p.Err, io.ErrUnexpectedEOF) {
				logger.Warn("aof: discarding truncated trailing record")
				break
			}
			if applied == 0 {
				return fmt.Errorf("aof corrupt at first record: %w", p.Err)
			}
			logger.Warn("aof: stopping replay at corrupt record:", p.Err)
			break
		}
		if p.Data == nil {
			continue
		}
		r, ok := p.Data.(*reply.MultiBulkReply)
		if !ok {
			if applied == 0 {
				return errors.New("aof corrupt at first record: not a command array")
			}
			logger.Warn("aof: stopping replay at non-array record")
			break
		}
		ret := handler.database.Exec(fakeConn, r.Args)
		if reply.IsErrorReply(ret) {
			logger.Error("aof replay command failed:", string(ret.ToBytes()))
		}
		applied++
	}
	logger.Info(fmt.Sprintf("aof: replayed %d records from %s", applied, handler.aofFilename))
	return nil
}

// Close drains the queue, writes and syncs the tail, and closes the file
func (handler *AofHandler) Close() {
	if handler.closing.Get() {
		return
	}
	handler.closing.Set(true)
	close(handler.aofChan)
	<-handler.done
	_ = handler.aofFile.Close()
}
