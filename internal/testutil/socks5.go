package testutil

import (
	"context"
	"io"
	"net"

	txsocks5 "github.com/txthinking/socks5"
	"golang.org/x/sync/errgroup"
)

// MockSOCKS5 scripts the answers of a fake SOCKS5 proxy.
type MockSOCKS5 struct {
	// Method is chosen in reply to any greeting.
	Method byte
	// UserPassStatus answers a username/password request.
	UserPassStatus byte
	// Rep answers the CONNECT request.
	Rep byte
	// Relay dials the requested target after a successful reply and pipes
	// traffic until either side closes.
	Relay bool
}

// SOCKS5Exchange records what a client sent to a MockSOCKS5.
type SOCKS5Exchange struct {
	Methods  []byte
	UserPass *txsocks5.UserPassNegotiationRequest
	Request  *txsocks5.Request
}

// Serve plays the scripted proxy on c. It stops at the first read error,
// which is how a client that gives up early shows up: the recorded
// exchange then ends at the last frame the client actually sent.
func (m MockSOCKS5) Serve(ctx context.Context, c net.Conn) (SOCKS5Exchange, error) {
	var ex SOCKS5Exchange

	neg, err := txsocks5.NewNegotiationRequestFrom(c)
	if err != nil {
		return ex, err
	}
	ex.Methods = neg.Methods

	if _, err := txsocks5.NewNegotiationReply(m.Method).WriteTo(c); err != nil {
		return ex, err
	}

	if m.Method == txsocks5.MethodUsernamePassword {
		urq, err := txsocks5.NewUserPassNegotiationRequestFrom(c)
		if err != nil {
			return ex, err
		}
		ex.UserPass = urq
		if _, err := txsocks5.NewUserPassNegotiationReply(m.UserPassStatus).WriteTo(c); err != nil {
			return ex, err
		}
	}

	req, err := txsocks5.NewRequestFrom(c)
	if err != nil {
		return ex, err
	}
	ex.Request = req

	if m.Rep != txsocks5.RepSuccess || !m.Relay {
		_, err := zeroAddrReply(m.Rep).WriteTo(c)
		return ex, err
	}

	d := net.Dialer{}
	dst, err := d.DialContext(ctx, "tcp", req.Address())
	if err != nil {
		_, _ = zeroAddrReply(txsocks5.RepHostUnreachable).WriteTo(c)
		return ex, err
	}
	defer dst.Close()

	a, addr, port, err := txsocks5.ParseAddress(dst.LocalAddr().String())
	if err != nil {
		return ex, err
	}
	if a == txsocks5.ATYPDomain {
		addr = addr[1:]
	}
	if _, err := txsocks5.NewReply(txsocks5.RepSuccess, a, addr, port).WriteTo(c); err != nil {
		return ex, err
	}

	g := errgroup.Group{}
	g.Go(func() error {
		_, err := io.Copy(dst, c)
		_ = dst.Close()
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(c, dst)
		_ = c.Close()
		return err
	})
	_ = g.Wait()

	return ex, nil
}

func zeroAddrReply(rep byte) *txsocks5.Reply {
	return txsocks5.NewReply(rep, txsocks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00})
}
