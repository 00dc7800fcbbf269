//go:build windows

package socket

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// ReuseAddr is refused on Windows, where SO_REUSEADDR lets a socket steal a
// port that another socket is actively using.
func ReuseAddr(s RawSocket) (RawSocket, error) {
	return s, errors.ErrUnsupported
}

// NoDelay disables Nagle's algorithm.
func NoDelay(s RawSocket) (RawSocket, error) {
	return s, setsockoptInt(s, windows.IPPROTO_TCP, windows.TCP_NODELAY, 1)
}

// SendBuffer sets SO_SNDBUF to n bytes.
func SendBuffer(n int) Transformer {
	return func(s RawSocket) (RawSocket, error) {
		return s, setsockoptInt(s, windows.SOL_SOCKET, windows.SO_SNDBUF, n)
	}
}

// RecvBuffer sets SO_RCVBUF to n bytes.
func RecvBuffer(n int) Transformer {
	return func(s RawSocket) (RawSocket, error) {
		return s, setsockoptInt(s, windows.SOL_SOCKET, windows.SO_RCVBUF, n)
	}
}

func setsockoptInt(s RawSocket, level, opt, value int) error {
	return os.NewSyscallError("setsockopt", windows.SetsockoptInt(windows.Handle(s.fd), level, opt, value))
}
