package socket

import (
	"errors"
	"net/netip"
	"syscall"
)

// ErrSocketReplaced is returned when a transformer hands back a different
// descriptor for a socket whose lifetime is managed by the Go runtime. This
// only happens on platforms without the raw unix socket path.
var ErrSocketReplaced = errors.New("socket: transformer replaced a runtime-owned socket")

// RawSocket is an OS socket descriptor lent to a Transformer. It is only
// valid for the duration of the transformer call.
type RawSocket struct {
	fd     uintptr
	family int
}

// NewRawSocket wraps fd, an open stream socket of the given address family
// (syscall.AF_INET or syscall.AF_INET6).
func NewRawSocket(fd uintptr, family int) RawSocket {
	return RawSocket{fd: fd, family: family}
}

// Fd returns the OS descriptor (a file descriptor on unix, a SOCKET handle
// on Windows).
func (s RawSocket) Fd() uintptr {
	return s.fd
}

// Family returns the socket's address family.
func (s RawSocket) Family() int {
	return s.family
}

// IsIPv6 reports whether the socket is an AF_INET6 socket.
func (s RawSocket) IsIPv6() bool {
	return s.family == syscall.AF_INET6
}

// Transformer customizes a freshly created socket before it is bound or
// connected. It must return a socket of the same family that is still able
// to perform the same operation, and must not close its input when it
// returns an error. A nil Transformer leaves the socket untouched.
type Transformer func(RawSocket) (RawSocket, error)

func (t Transformer) apply(s RawSocket) (RawSocket, error) {
	if t == nil {
		return s, nil
	}
	return t(s)
}

// Chain returns a Transformer that applies ts in order, stopping at the
// first error.
func Chain(ts ...Transformer) Transformer {
	return func(s RawSocket) (RawSocket, error) {
		var err error
		for _, t := range ts {
			s, err = t.apply(s)
			if err != nil {
				return s, err
			}
		}
		return s, nil
	}
}

func familyOf(addr netip.AddrPort) (int, string) {
	if addr.Addr().Is4() {
		return syscall.AF_INET, "tcp4"
	}
	return syscall.AF_INET6, "tcp6"
}

func unmap(addr netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port())
}
