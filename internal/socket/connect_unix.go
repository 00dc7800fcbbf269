//go:build unix

package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Connect opens a TCP connection to addr. The socket is created blocking
// for addr's address family and passed through t, which may replace it.
// Only then is it made non-blocking and connected; the call returns once
// the TCP handshake has completed, failed, or ctx is done.
//
// OS errors are returned wrapped, so errors.Is works against the underlying
// syscall.Errno. Transformer errors are wrapped unchanged.
func Connect(ctx context.Context, addr netip.AddrPort, t Transformer, keepAlive net.KeepAliveConfig) (net.Conn, error) {
	if !addr.IsValid() {
		return nil, errors.New("connect: invalid address")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	addr = unmap(addr)
	family, _ := familyOf(addr)

	sa, err := sockaddr(addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, os.NewSyscallError("socket", err))
	}
	unix.CloseOnExec(fd)

	s, err := t.apply(RawSocket{fd: uintptr(fd), family: family})
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("connect %s: socket transformer: %w", addr, err)
	}
	if nfd := int(s.fd); nfd != fd {
		_ = unix.Close(fd)
		fd = nfd
	}

	c, err := connectFD(ctx, fd, sa)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	if tc, ok := c.(*net.TCPConn); ok && keepAlive.Enable {
		_ = tc.SetKeepAliveConfig(keepAlive)
	}
	return c, nil
}

// connectFD takes ownership of fd: it is either converted into a connection
// or closed.
func connectFD(ctx context.Context, fd int, sa unix.Sockaddr) (net.Conn, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("setnonblock", err)
	}

	err := unix.Connect(fd, sa)
	switch {
	case err == nil:
	case errors.Is(err, unix.EINPROGRESS), errors.Is(err, unix.EINTR):
	default:
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("connect", err)
	}

	// net.FileConn dups the descriptor; f owns the original.
	f := os.NewFile(uintptr(fd), "tcp-connect")
	defer f.Close()

	if err != nil {
		if err := waitConnected(ctx, f); err != nil {
			return nil, err
		}
	}

	return net.FileConn(f)
}

// waitConnected blocks in the netpoller until the non-blocking connect on f
// finishes, then reports its outcome from SO_ERROR.
func waitConnected(ctx context.Context, f *os.File) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		// Any past deadline wakes the waiter.
		_ = f.SetWriteDeadline(time.Unix(1, 0))
	})

	var connErr error
	err = rc.Write(func(fd uintptr) bool {
		n, err := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			connErr = os.NewSyscallError("getsockopt", err)
			return true
		}
		switch errno := syscall.Errno(n); errno {
		case unix.EINPROGRESS, unix.EALREADY, unix.EINTR:
			return false
		case 0:
			// Writable with no error can be a spurious wakeup; a peer
			// address confirms the connection.
			_, err := unix.Getpeername(int(fd))
			return err == nil
		default:
			connErr = os.NewSyscallError("connect", errno)
			return true
		}
	})
	if !stop() || ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	if connErr != nil {
		return connErr
	}
	return nil
}
