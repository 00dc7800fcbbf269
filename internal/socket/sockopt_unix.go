//go:build unix

package socket

import (
	"os"

	"golang.org/x/sys/unix"
)

// ReuseAddr sets SO_REUSEADDR. Listen already does this on unix; it is
// useful for outbound sockets that bind a fixed local port.
func ReuseAddr(s RawSocket) (RawSocket, error) {
	return s, setsockoptInt(s, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

// NoDelay disables Nagle's algorithm.
func NoDelay(s RawSocket) (RawSocket, error) {
	return s, setsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}

// SendBuffer sets SO_SNDBUF to n bytes.
func SendBuffer(n int) Transformer {
	return func(s RawSocket) (RawSocket, error) {
		return s, setsockoptInt(s, unix.SOL_SOCKET, unix.SO_SNDBUF, n)
	}
}

// RecvBuffer sets SO_RCVBUF to n bytes.
func RecvBuffer(n int) Transformer {
	return func(s RawSocket) (RawSocket, error) {
		return s, setsockoptInt(s, unix.SOL_SOCKET, unix.SO_RCVBUF, n)
	}
}

func setsockoptInt(s RawSocket, level, opt, value int) error {
	return os.NewSyscallError("setsockopt", unix.SetsockoptInt(int(s.fd), level, opt, value))
}
