package conn

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CopyBidirectional pipes data between left and right until both directions
// finish or ctx is canceled. Both connections are closed on return.
//
// io.EOF and errors caused by the other direction closing the connections
// are not reported.
func CopyBidirectional(ctx context.Context, left, right io.ReadWriteCloser) error {
	g, gctx := errgroup.WithContext(ctx)

	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			_ = left.Close()
			_ = right.Close()
		})
	}
	defer closeBoth()

	g.Go(func() error {
		_, err := io.Copy(left, right)
		if !closeWrite(left) {
			closeBoth()
		}
		return quiet(err)
	})

	g.Go(func() error {
		_, err := io.Copy(right, left)
		if !closeWrite(right) {
			closeBoth()
		}
		return quiet(err)
	})

	// If the context is canceled, ensure we close both sides to unblock Copy.
	stop := context.AfterFunc(gctx, closeBoth)
	defer stop()

	return g.Wait()
}

// closeWrite half-closes c so the peer sees EOF while the other direction
// keeps flowing. It reports false when c cannot be half-closed.
func closeWrite(c io.Closer) bool {
	cw, ok := c.(interface{ CloseWrite() error })
	if !ok {
		return false
	}
	_ = cw.CloseWrite()
	return true
}

func quiet(err error) error {
	if err == nil || errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
