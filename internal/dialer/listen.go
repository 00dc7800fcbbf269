package dialer

import (
	"net"
	"net/netip"

	"github.com/die-net/linkup/internal/conn"
	"github.com/die-net/linkup/internal/socket"
)

// Listen opens a TCP listener on addr whose socket goes through
// cfg.Transformer, and whose accepted connections get cfg.KeepAlive.
func Listen(addr netip.AddrPort, cfg Config) (net.Listener, error) {
	ln, err := socket.Listen(addr, cfg.Transformer)
	if err != nil {
		return nil, err
	}

	log := cfg.logger()
	log.Debug().Stringer("addr", ln.Addr()).Msg("listening")

	return &conn.KeepAliveListener{Listener: ln, KeepAliveConfig: cfg.KeepAlive}, nil
}
