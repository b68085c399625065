//go:build !linux

package tcp

import "net"

// listenReusePort falls back to a plain listener where SO_REUSEPORT is not
// supported; binding the same address twice fails and the server runs with a
// single reactor.
func listenReusePort(address string) (net.Listener, error) {
	return net.Listen("tcp", address)
}
