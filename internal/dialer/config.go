package dialer

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/die-net/linkup/internal/socket"
	"github.com/die-net/linkup/internal/socks5"
)

var (
	// ErrConfig is the category of dial errors detected before any network
	// I/O. Proxy URL errors use socks5.ErrConfig; IsConfigError matches
	// both.
	ErrConfig = errors.New("dial config")

	ErrOnionWithoutProxy = fmt.Errorf("%w: need a tor proxy to connect to an onion address", ErrConfig)
	ErrNotOnion          = fmt.Errorf("%w: not an /onion3 multiaddr", ErrConfig)
)

// IsConfigError reports whether err is a configuration error rather than a
// network or protocol failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, socks5.ErrConfig)
}

// Config is the per-dial socket configuration.
type Config struct {
	// Transformer is applied to every socket before it connects.
	Transformer socket.Transformer

	// Proxy routes dials through a SOCKS5 proxy when non-nil.
	Proxy *socks5.ProxyConfig

	KeepAlive net.KeepAliveConfig

	// NegotiationTimeout bounds the proxy handshake. Zero means only the
	// caller's context applies.
	NegotiationTimeout time.Duration

	// Logger receives debug output. Nil disables logging.
	Logger *zerolog.Logger
}

func (c Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}
