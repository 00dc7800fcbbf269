//go:build openbsd

package socket

import "golang.org/x/sys/unix"

// TransparentSupported is true where Transparent can be applied.
const TransparentSupported = true

// Transparent sets SO_BINDANY. OpenBSD uses a socket-level option for both
// address families, unlike FreeBSD. Requires root.
func Transparent(s RawSocket) (RawSocket, error) {
	return s, setsockoptInt(s, unix.SOL_SOCKET, unix.SO_BINDANY, 1)
}
