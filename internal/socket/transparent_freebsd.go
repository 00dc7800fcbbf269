//go:build freebsd

package socket

import "golang.org/x/sys/unix"

// TransparentSupported is true where Transparent can be applied.
const TransparentSupported = true

// Transparent sets IP_BINDANY (or IPV6_BINDANY) so the socket can serve
// connections redirected by IPFW fwd or PF rdr-to. Requires the
// PRIV_NETINET_BINDANY privilege.
func Transparent(s RawSocket) (RawSocket, error) {
	if s.IsIPv6() {
		return s, setsockoptInt(s, unix.IPPROTO_IPV6, unix.IPV6_BINDANY, 1)
	}
	return s, setsockoptInt(s, unix.IPPROTO_IP, unix.IP_BINDANY, 1)
}
