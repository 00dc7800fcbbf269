//go:build !unix

package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// Listen creates a TCP listener on addr, passing the socket through t
// before it is bound.
//
// SO_REUSEADDR is deliberately left unset: on Windows it allows another
// process to take over a port that is actively in use. The backlog is
// whatever the Go runtime chooses.
func Listen(addr netip.AddrPort, t Transformer) (net.Listener, error) {
	if !addr.IsValid() {
		return nil, errors.New("listen: invalid address")
	}
	addr = unmap(addr)
	family, network := familyOf(addr)

	lc := net.ListenConfig{Control: control(family, t)}
	ln, err := lc.Listen(context.Background(), network, addr.String())
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}
