//go:build linux

package socket

import "golang.org/x/sys/unix"

// TransparentSupported is true where Transparent can be applied.
const TransparentSupported = true

// Transparent sets IP_TRANSPARENT (or IPV6_TRANSPARENT) so the socket can
// bind to and accept traffic for non-local addresses, as used with
// iptables/nftables TPROXY rules. Requires CAP_NET_ADMIN.
func Transparent(s RawSocket) (RawSocket, error) {
	if s.IsIPv6() {
		return s, setsockoptInt(s, unix.SOL_IPV6, unix.IPV6_TRANSPARENT, 1)
	}
	return s, setsockoptInt(s, unix.SOL_IP, unix.IP_TRANSPARENT, 1)
}
