package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/die-net/linkup/internal/conn"
	"github.com/die-net/linkup/internal/dialer"
	"github.com/die-net/linkup/internal/rt"
	"github.com/die-net/linkup/internal/socket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		listen = pflag.String("listen", "", "Accept connections on this ip:port and forward each one to <target>. Empty pipes stdin/stdout instead.")
		proxy  = pflag.String("proxy", defaultProxy(), "Outbound route: direct:// | socks5://[user:pass@]ip:port")

		dialTimeout        = pflag.Duration("dial-timeout", 10*time.Second, "Timeout for establishing an outbound connection, including proxy negotiation")
		negotiationTimeout = pflag.Duration("negotiation-timeout", 10*time.Second, "Timeout for SOCKS5 negotiation with the proxy")
		tcpKeepAlive       = pflag.String("tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
		noDelay            = pflag.Bool("nodelay", true, "Set TCP_NODELAY on outbound sockets")
		sendBuffer         = pflag.Int("send-buffer", 0, "SO_SNDBUF for outbound sockets; 0 keeps the system default")
		recvBuffer         = pflag.Int("recv-buffer", 0, "SO_RCVBUF for outbound sockets; 0 keeps the system default")
		transparent        = pflag.Bool("transparent", false, "Mark the listening socket transparent so it can accept redirected traffic")
		statsInterval      = pflag.Duration("stats-interval", 0, "Log byte counters at this interval; 0 disables")
		verbose            = pflag.Bool("verbose", false, "Enable debug logging")
	)

	if !socket.TransparentSupported {
		_ = pflag.CommandLine.MarkHidden("transparent")
	}

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <target>\n\n<target> is ip:port, host:port (via proxy), or a multiaddr such as /onion3/<id>:<port>.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		return errors.New("expected exactly one <target>")
	}
	target := pflag.Arg(0)

	log := newLogger(*verbose)

	ka, err := parseTCPKeepAlive(*tcpKeepAlive)
	if err != nil {
		return fmt.Errorf("invalid --tcp-keepalive: %w", err)
	}

	var outbound []socket.Transformer
	if *noDelay {
		outbound = append(outbound, socket.NoDelay)
	}
	if *sendBuffer > 0 {
		outbound = append(outbound, socket.SendBuffer(*sendBuffer))
	}
	if *recvBuffer > 0 {
		outbound = append(outbound, socket.RecvBuffer(*recvBuffer))
	}

	d, err := dialer.New(dialer.Config{
		Transformer:        socket.Chain(outbound...),
		KeepAlive:          ka,
		NegotiationTimeout: *negotiationTimeout,
		Logger:             &log,
	}, *proxy)
	if err != nil {
		return fmt.Errorf("invalid --proxy: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	var traffic conn.Counters
	if *statsInterval > 0 {
		g.Go(func() error {
			logStats(ctx, log, *statsInterval, &traffic)
			return nil
		})
	}

	fwd := &forwarder{
		dialer:      d,
		target:      target,
		dialTimeout: *dialTimeout,
		traffic:     &traffic,
		log:         log,
	}

	if *listen == "" {
		g.Go(func() error {
			// Stop the stats loop once the pipe is done.
			defer stop()
			return fwd.pipeStdio(ctx)
		})
		return g.Wait()
	}

	addr, err := netip.ParseAddrPort(*listen)
	if err != nil {
		return fmt.Errorf("invalid --listen: %w", err)
	}

	var lt socket.Transformer
	if *transparent {
		lt = socket.Transparent
	}
	ln, err := dialer.Listen(addr, dialer.Config{Transformer: lt, KeepAlive: ka, Logger: &log})
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})

	g.Go(func() error {
		return fwd.serve(ctx, ln)
	})
	log.Info().Stringer("addr", ln.Addr()).Str("target", target).Msg("forwarding")

	err = g.Wait()
	log.Info().Msg("shutting down")
	return err
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// logStats logs traffic to and from the target every period until ctx is
// done. Missed ticks are skipped rather than logged in a burst.
func logStats(ctx context.Context, log zerolog.Logger, period time.Duration, traffic *conn.Counters) {
	iv := rt.NewInterval(period)
	defer iv.Stop()

	for range iv.Ticks(ctx) {
		log.Info().
			Int64("sent_bytes", traffic.Written.Load()).
			Int64("received_bytes", traffic.Read.Load()).
			Msg("stats")
	}
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := parsePositiveInt(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}

func defaultProxy() string {
	if p := os.Getenv("ALL_PROXY"); p != "" {
		return p
	}

	if p := os.Getenv("all_proxy"); p != "" {
		return p
	}

	return "direct://"
}
