package connection

import "net"

// FakeConn implements resp.Connection for aof replay and tests. Written bytes
// are collected instead of sent anywhere.
type FakeConn struct {
	buf []byte
}

// NewFakeConn creates FakeConn
func NewFakeConn() *FakeConn {
	return &FakeConn{}
}

// RemoteAddr returns a nil address
func (c *FakeConn) RemoteAddr() net.Addr {
	return nil
}

// Write records the given bytes
func (c *FakeConn) Write(b []byte) error {
	c.buf = append(c.buf, b...)
	return nil
}

// Bytes returns everything written so far
func (c *FakeConn) Bytes() []byte {
	return c.buf
}

// Clean resets the recorded bytes
func (c *FakeConn) Clean() {
	c.buf = nil
}
