//go:build unix

package socket

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

const listenBacklog = 1024

// Listen creates a TCP listener on addr.
//
// The socket gets SO_REUSEADDR so a restarted process can rebind while old
// connections linger in TIME_WAIT, then goes through t. A transformer may
// bind the socket itself: bind failing with EINVAL (socket already bound) is
// accepted as success. This is the only bind error that is tolerated.
//
// Once listening, the descriptor's ownership moves to the Go netpoller via
// net.FileListener; the descriptor must not be used elsewhere afterwards.
func Listen(addr netip.AddrPort, t Transformer) (net.Listener, error) {
	if !addr.IsValid() {
		return nil, errors.New("listen: invalid address")
	}
	addr = unmap(addr)
	family, _ := familyOf(addr)

	sa, err := sockaddr(addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, os.NewSyscallError("socket", err))
	}
	unix.CloseOnExec(fd)

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen %s: %w", addr, os.NewSyscallError("setsockopt", err))
	}

	s, err := t.apply(RawSocket{fd: uintptr(fd), family: family})
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen %s: socket transformer: %w", addr, err)
	}
	if nfd := int(s.fd); nfd != fd {
		_ = unix.Close(fd)
		fd = nfd
	}

	ln, err := listenFD(fd, sa)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// listenFD takes ownership of fd: it is either converted into a listener or
// closed.
func listenFD(fd int, sa unix.Sockaddr) (net.Listener, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("setnonblock", err)
	}

	if err := unix.Bind(fd, sa); err != nil && !errors.Is(err, unix.EINVAL) {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("bind", err)
	}

	if err := unix.Listen(fd, listenBacklog); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("listen", err)
	}

	// net.FileListener dups the descriptor; f owns the original.
	f := os.NewFile(uintptr(fd), "tcp-listener")
	ln, err := net.FileListener(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}
	return ln, nil
}

func sockaddr(addr netip.AddrPort) (unix.Sockaddr, error) {
	ip := addr.Addr()
	port := int(addr.Port())

	if ip.Is4() {
		return &unix.SockaddrInet4{Port: port, Addr: ip.As4()}, nil
	}

	sa := &unix.SockaddrInet6{Port: port, Addr: ip.As16()}
	if zone := ip.Zone(); zone != "" {
		if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
			sa.ZoneId = uint32(n)
		} else {
			ifi, err := net.InterfaceByName(zone)
			if err != nil {
				return nil, fmt.Errorf("ipv6 zone %q: %w", zone, err)
			}
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return sa, nil
}
