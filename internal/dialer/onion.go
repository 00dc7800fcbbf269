package dialer

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

const onion3Prefix = "/onion3/"

// ConnectOnion dials a Tor onion service through cfg.Proxy. addr must start
// with an /onion3 component; anything after it is ignored.
//
// It fails before any network I/O when no proxy is configured or addr is
// not an onion address.
func ConnectOnion(ctx context.Context, addr ma.Multiaddr, cfg Config) (net.Conn, error) {
	if cfg.Proxy == nil {
		return nil, ErrOnionWithoutProxy
	}

	target, err := onionTarget(addr)
	if err != nil {
		return nil, err
	}

	log := cfg.logger()
	log.Debug().Str("onion", target).Msg("dialing onion service")

	return connectByProxy(ctx, target, cfg)
}

func onionTarget(addr ma.Multiaddr) (string, error) {
	if addr == nil {
		return "", ErrNotOnion
	}

	s := addr.String()
	if !strings.HasPrefix(s, onion3Prefix) {
		return "", fmt.Errorf("%w: %s", ErrNotOnion, s)
	}

	v, err := addr.ValueForProtocol(ma.P_ONION3)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotOnion, err)
	}
	return OnionTarget(v)
}

// OnionTarget rewrites an onion3 multiaddr value, "<id>:<port>", into the
// "<id>.onion:<port>" form a Tor SOCKS proxy expects as a domain target.
//
// It relies on onion3's use of ':' between service id and port; a change to
// that convention would break this rewrite.
func OnionTarget(value string) (string, error) {
	id, port, ok := strings.Cut(value, ":")
	if !ok || id == "" || port == "" || strings.Contains(port, ":") {
		return "", fmt.Errorf("%w: onion value %q is not <id>:<port>", ErrConfig, value)
	}
	return id + ".onion:" + port, nil
}

func dialMultiaddr(ctx context.Context, target string, cfg Config) (net.Conn, error) {
	m, err := ma.NewMultiaddr(target)
	if err != nil {
		return nil, fmt.Errorf("%w: multiaddr %q: %w", ErrConfig, target, err)
	}

	if strings.HasPrefix(m.String(), onion3Prefix) {
		return ConnectOnion(ctx, m, cfg)
	}

	na, err := manet.ToNetAddr(m)
	if err != nil {
		return nil, fmt.Errorf("%w: multiaddr %q: %w", ErrConfig, target, err)
	}
	tcpAddr, ok := na.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("%w: multiaddr %q is not a tcp address", ErrConfig, target)
	}

	ap := tcpAddr.AddrPort()
	return Connect(ctx, netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), cfg)
}
