// Package tcp provides the server side of the reactor topology: one accept
// loop per reactor, each on its own reuse-port listener, all sharing one
// application handler.
package tcp

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"ignix/interface/tcp"
	"ignix/lib/logger"
)

// Config stores tcp server properties
type Config struct {
	Address  string
	Reactors int
}

// ListenAndServeWithSignal binds the reactor listeners and serves until an
// exit signal arrives
func ListenAndServeWithSignal(cfg *Config, handler tcp.Handler) error {
	closeChan := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		switch sig {
		case syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT:
			closeChan <- struct{}{}
		}
	}()

	reactors := cfg.Reactors
	if reactors <= 0 {
		reactors = runtime.NumCPU()
	}
	listeners := make([]net.Listener, 0, reactors)
	for i := 0; i < reactors; i++ {
		listener, err := listenReusePort(cfg.Address)
		if err != nil {
			if i == 0 {
				return err
			}
			// The kernel can only spread connections across as many
			// listeners as it lets us bind.
			logger.Warn("reuse-port listener unavailable, running with", i, "reactor(s):", err)
			break
		}
		listeners = append(listeners, listener)
	}
	logger.Info(fmt.Sprintf("bind %s with %d reactor(s), start listening...", cfg.Address, len(listeners)))
	ListenAndServe(listeners, handler, closeChan)
	return nil
}

// ListenAndServe runs one accept loop per listener until closeChan fires or
// every listener fails
func ListenAndServe(listeners []net.Listener, handler tcp.Handler, closeChan <-chan struct{}) {
	go func() {
		<-closeChan
		logger.Info("shutting down...")
		for _, listener := range listeners {
			_ = listener.Close()
		}
		_ = handler.Close()
	}()
	defer func() {
		for _, listener := range listeners {
			_ = listener.Close()
		}
		_ = handler.Close()
	}()

	ctx := context.Background()
	var waitDone sync.WaitGroup
	var accepting sync.WaitGroup
	for _, listener := range listeners {
		accepting.Add(1)
		go func(listener net.Listener) {
			defer accepting.Done()
			for {
				conn, err := listener.Accept()
				if err != nil {
					return
				}
				if tcpConn, ok := conn.(*net.TCPConn); ok {
					_ = tcpConn.SetNoDelay(true)
				}
				logger.Debug("accepted link: " + conn.RemoteAddr().String())
				waitDone.Add(1)
				go func() {
					defer waitDone.Done()
					handler.Handle(ctx, conn)
				}()
			}
		}(listener)
	}
	accepting.Wait()
	waitDone.Wait()
}
