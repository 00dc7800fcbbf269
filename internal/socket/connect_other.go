//go:build !unix

package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
)

// Connect opens a TCP connection to addr. The socket is created by the Go
// runtime and passed through t before the connect is issued, so t may
// configure it but not replace it.
func Connect(ctx context.Context, addr netip.AddrPort, t Transformer, keepAlive net.KeepAliveConfig) (net.Conn, error) {
	if !addr.IsValid() {
		return nil, errors.New("connect: invalid address")
	}
	addr = unmap(addr)
	family, network := familyOf(addr)

	d := net.Dialer{
		KeepAliveConfig: keepAlive,
		Control:         control(family, t),
	}

	c, err := d.DialContext(ctx, network, addr.String())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return c, nil
}

// control adapts t to the Control hook of net.Dialer and net.ListenConfig.
// The runtime owns the descriptor there, so t may configure it but not
// swap it.
func control(family int, t Transformer) func(network, address string, c syscall.RawConn) error {
	if t == nil {
		return nil
	}

	return func(_, _ string, c syscall.RawConn) error {
		var tErr error
		err := c.Control(func(fd uintptr) {
			out, err := t(RawSocket{fd: fd, family: family})
			if err != nil {
				tErr = fmt.Errorf("socket transformer: %w", err)
				return
			}
			if out.fd != fd {
				tErr = ErrSocketReplaced
			}
		})
		if err != nil {
			return err
		}
		return tErr
	}
}
