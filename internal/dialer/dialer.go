package dialer

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/die-net/linkup/internal/socket"
	"github.com/die-net/linkup/internal/socks5"
)

// Dialer mirrors the net.Dialer interface.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// New constructs the outbound Dialer for upstream, overriding cfg.Proxy.
//
// Supported upstreams:
//   - "" or direct://
//   - socks5://[user:pass@]ip:port
func New(cfg Config, upstream string) (Dialer, error) {
	switch strings.ToLower(upstream) {
	case "", "direct://":
		return NewDirectDialer(cfg), nil
	}

	pc, err := socks5.ParseProxyURL(upstream)
	if err != nil {
		return nil, err
	}
	return NewSOCKS5ProxyDialer(cfg, pc), nil
}

type directDialer struct {
	cfg Config
}

// NewDirectDialer returns a Dialer that connects to targets itself.
func NewDirectDialer(cfg Config) Dialer {
	cfg.Proxy = nil
	return &directDialer{cfg: cfg}
}

func (d *directDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if err := checkNetwork(network, address); err != nil {
		return nil, err
	}
	return Dial(ctx, address, d.cfg)
}

type socks5ProxyDialer struct {
	cfg Config
}

// NewSOCKS5ProxyDialer returns a Dialer that reaches every target through
// the SOCKS5 proxy pc, including onion services.
func NewSOCKS5ProxyDialer(cfg Config, pc socks5.ProxyConfig) Dialer {
	cfg.Proxy = &pc
	return &socks5ProxyDialer{cfg: cfg}
}

func (d *socks5ProxyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if err := checkNetwork(network, address); err != nil {
		return nil, err
	}
	return Dial(ctx, address, d.cfg)
}

func checkNetwork(network, address string) error {
	if !strings.HasPrefix(network, "tcp") {
		return fmt.Errorf("dial %s %s: unsupported network", network, address)
	}
	return nil
}

// Dial connects to a textual target:
//   - a multiaddr: /onion3/<id>:<port>, /ip4/<ip>/tcp/<port>, /ip6/<ip>/tcp/<port>
//   - ip:port
//   - host:port, only with a proxy, which resolves host remotely
//
// Onion targets always require a proxy.
func Dial(ctx context.Context, target string, cfg Config) (net.Conn, error) {
	if strings.HasPrefix(target, "/") {
		return dialMultiaddr(ctx, target, cfg)
	}

	if ap, err := netip.ParseAddrPort(target); err == nil {
		return Connect(ctx, ap, cfg)
	}

	host, _, err := net.SplitHostPort(target)
	if err != nil {
		return nil, fmt.Errorf("%w: target %q: %w", ErrConfig, target, err)
	}
	if cfg.Proxy == nil {
		if strings.HasSuffix(strings.ToLower(host), ".onion") {
			return nil, ErrOnionWithoutProxy
		}
		return nil, fmt.Errorf("%w: target %q is not ip:port and no proxy is configured to resolve it", ErrConfig, target)
	}
	return connectByProxy(ctx, target, cfg)
}

// Connect dials target directly, or through cfg.Proxy when it is set.
func Connect(ctx context.Context, target netip.AddrPort, cfg Config) (net.Conn, error) {
	if cfg.Proxy == nil {
		return connectDirect(ctx, target, cfg)
	}
	return connectByProxy(ctx, target.String(), cfg)
}

func connectDirect(ctx context.Context, target netip.AddrPort, cfg Config) (net.Conn, error) {
	log := cfg.logger()
	log.Debug().Stringer("target", target).Msg("dialing direct")

	return socket.Connect(ctx, target, cfg.Transformer, cfg.KeepAlive)
}

// connectByProxy dials the proxy and asks it to relay to target. The
// returned conn is closed on any failure, including ctx cancellation during
// the handshake.
func connectByProxy(ctx context.Context, target string, cfg Config) (net.Conn, error) {
	log := cfg.logger()
	pc := cfg.Proxy

	proxyAddr, err := netip.ParseAddrPort(pc.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: proxy address %q must be ip:port: %w", ErrConfig, pc.ProxyURL, err)
	}

	log.Debug().
		Str("proxy", pc.ProxyURL).
		Bool("auth", pc.Auth != nil).
		Str("target", target).
		Msg("dialing via socks5 proxy")

	c, err := socket.Connect(ctx, proxyAddr, cfg.Transformer, cfg.KeepAlive)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy: %w", err)
	}

	// Close conn if ctx is canceled during the handshake.
	stop := context.AfterFunc(ctx, func() {
		_ = c.Close()
	})

	if cfg.NegotiationTimeout > 0 {
		_ = c.SetDeadline(time.Now().Add(cfg.NegotiationTimeout))
	}

	err = socks5.Handshake(c, pc.Auth, target, log)
	if !stop() && err == nil {
		// ctx fired after the last frame; conn is already closed.
		err = ctx.Err()
	}
	if err != nil {
		_ = c.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("socks5 proxy %s: %w", pc.ProxyURL, ctxErr)
		}
		return nil, fmt.Errorf("socks5 proxy %s: %w", pc.ProxyURL, err)
	}

	if cfg.NegotiationTimeout > 0 {
		_ = c.SetDeadline(time.Time{})
	}
	return c, nil
}
