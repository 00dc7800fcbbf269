package main

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/die-net/linkup/internal/conn"
	"github.com/die-net/linkup/internal/dialer"
)

type forwarder struct {
	dialer      dialer.Dialer
	target      string
	dialTimeout time.Duration
	traffic     *conn.Counters
	log         zerolog.Logger
}

func (f *forwarder) dial(ctx context.Context) (net.Conn, error) {
	if f.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.dialTimeout)
		defer cancel()
	}
	return f.dialer.DialContext(ctx, "tcp", f.target)
}

// pipeStdio connects stdin/stdout to the target, like nc.
func (f *forwarder) pipeStdio(ctx context.Context) error {
	c, err := f.dial(ctx)
	if err != nil {
		return err
	}

	return conn.CopyBidirectional(ctx, stdio{}, conn.NewCountingConn(c, f.traffic))
}

// serve forwards every connection accepted on ln until ln is closed.
func (f *forwarder) serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		wg.Go(func() {
			f.handle(ctx, c)
		})
	}
}

func (f *forwarder) handle(ctx context.Context, c net.Conn) {
	log := f.log.With().Stringer("client", c.RemoteAddr()).Logger()

	dst, err := f.dial(ctx)
	if err != nil {
		_ = c.Close()
		log.Debug().Err(err).Msg("dial failed")
		return
	}

	err = conn.CopyBidirectional(ctx, c, conn.NewCountingConn(dst, f.traffic))
	if err != nil {
		log.Debug().Err(err).Msg("forward ended")
	}
}

// stdio is the process's stdin and stdout as one stream.
type stdio struct{}

func (stdio) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdio) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdio) CloseWrite() error {
	return os.Stdout.Close()
}

func (stdio) Close() error {
	return errors.Join(os.Stdin.Close(), os.Stdout.Close())
}
