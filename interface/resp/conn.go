package resp

import "net"

// Connection represents a client connection at the protocol layer
type Connection interface {
	Write([]byte) error
	RemoteAddr() net.Addr
}
