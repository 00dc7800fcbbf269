package socks5

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	txsocks5 "github.com/txthinking/socks5"
)

// maxFieldLen is the largest username, password or domain name a single
// length byte can describe.
const maxFieldLen = 255

// Handshake runs the client side of a SOCKS5 negotiation on rw, an open
// stream to the proxy, asking it to relay a TCP connection to target
// (host:port; non-IP hosts, including .onion names, are sent as domain
// names).
//
// Steps run strictly in order and each frame is written or read in full
// before the next one. On success rw carries the target's traffic. On
// failure the caller owns rw and should close it; the handshake cannot be
// resumed.
func Handshake(rw io.ReadWriter, auth *Auth, target string, log zerolog.Logger) error {
	if err := ClientNegotiate(rw, auth, log); err != nil {
		return err
	}
	return ClientConnect(rw, target, log)
}

// ClientNegotiate performs method selection and, if the proxy chooses it,
// username/password authentication.
//
// Exactly one method is offered: username/password when auth is non-nil,
// no authentication otherwise.
func ClientNegotiate(rw io.ReadWriter, auth *Auth, log zerolog.Logger) error {
	method := txsocks5.MethodNone
	if auth != nil {
		method = txsocks5.MethodUsernamePassword
	}

	log.Debug().Uint8("method", method).Msg("socks5: sending handshake")
	if _, err := txsocks5.NewNegotiationRequest([]byte{method}).WriteTo(rw); err != nil {
		return protoErr("write negotiation", err)
	}

	neg, err := txsocks5.NewNegotiationReplyFrom(rw)
	if err != nil {
		return protoErr("read negotiation", err)
	}
	log.Debug().Uint8("method", neg.Method).Msg("socks5: got handshake response")

	switch neg.Method {
	case txsocks5.MethodNone:
		if auth != nil {
			// Offering only username/password and getting "none" back is
			// still usable: the proxy simply does not need credentials.
			log.Debug().Msg("socks5: proxy waived authentication")
		}
		return nil
	case txsocks5.MethodUsernamePassword:
		if auth == nil {
			return ErrProtocolViolation
		}
		return authenticate(rw, auth, log)
	default:
		return &MethodError{Method: neg.Method}
	}
}

func authenticate(rw io.ReadWriter, auth *Auth, log zerolog.Logger) error {
	if len(auth.Username) > maxFieldLen || len(auth.Password) > maxFieldLen {
		return protoErr("write userpass", errors.New("username or password longer than 255 bytes"))
	}

	if _, err := txsocks5.NewUserPassNegotiationRequest([]byte(auth.Username), []byte(auth.Password)).WriteTo(rw); err != nil {
		return protoErr("write userpass", err)
	}

	rep, err := txsocks5.NewUserPassNegotiationReplyFrom(rw)
	if err != nil {
		return protoErr("read userpass", err)
	}
	if rep.Status != txsocks5.UserPassStatusSuccess {
		return &AuthRejectedError{Status: rep.Status}
	}

	log.Debug().Msg("socks5: password auth succeeded")
	return nil
}

// ClientConnect sends a CONNECT request for target and waits for the
// proxy's reply.
func ClientConnect(rw io.ReadWriter, target string, log zerolog.Logger) error {
	atyp, dstAddr, dstPort, err := txsocks5.ParseAddress(target)
	if err != nil {
		return protoErr("parse address", err)
	}
	if atyp == txsocks5.ATYPDomain {
		// ParseAddress prefixes domain names with their length byte, which
		// NewRequest adds again.
		dstAddr = dstAddr[1:]
		if len(dstAddr) == 0 || len(dstAddr) > maxFieldLen {
			return protoErr("parse address", fmt.Errorf("invalid domain length %d", len(dstAddr)))
		}
	}

	log.Debug().Str("target", target).Msg("socks5: sending connect request")
	if _, err := txsocks5.NewRequest(txsocks5.CmdConnect, atyp, dstAddr, dstPort).WriteTo(rw); err != nil {
		return protoErr("write request", err)
	}

	rep, err := txsocks5.NewReplyFrom(rw)
	if err != nil {
		return protoErr("read reply", err)
	}
	log.Debug().Uint8("reply", rep.Rep).Msg("socks5: got connect response")

	if rep.Rep != txsocks5.RepSuccess {
		return &RelayRejectedError{Reply: rep.Rep}
	}
	return nil
}
