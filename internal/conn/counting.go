package conn

import (
	"net"
	"sync/atomic"
)

// Counters accumulates bytes moved through any number of CountingConns.
type Counters struct {
	Read    atomic.Int64
	Written atomic.Int64
}

// CountingConn is a net.Conn that adds the bytes it reads and writes to a
// shared Counters.
type CountingConn struct {
	net.Conn
	c *Counters
}

// NewCountingConn wraps nc so its traffic is added to c.
func NewCountingConn(nc net.Conn, c *Counters) *CountingConn {
	return &CountingConn{Conn: nc, c: c}
}

func (cc *CountingConn) Read(p []byte) (int, error) {
	n, err := cc.Conn.Read(p)
	cc.c.Read.Add(int64(n))
	return n, err
}

func (cc *CountingConn) Write(p []byte) (int, error) {
	n, err := cc.Conn.Write(p)
	cc.c.Written.Add(int64(n))
	return n, err
}

// CloseWrite half-closes the underlying connection when it supports it.
func (cc *CountingConn) CloseWrite() error {
	if cw, ok := cc.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}
