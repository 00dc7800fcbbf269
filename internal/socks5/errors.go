package socks5

import (
	"errors"
	"fmt"

	txsocks5 "github.com/txthinking/socks5"
)

// methodNoAcceptable is the RFC 1928 method selection meaning none of the
// offered methods is acceptable.
const methodNoAcceptable byte = 0xff

var (
	// ErrProtocol is the category of every error returned by the handshake.
	ErrProtocol = errors.New("socks5 protocol")

	// ErrProtocolViolation means the proxy demanded username/password
	// authentication although the client offered none.
	ErrProtocolViolation = fmt.Errorf("%w: server requires username/password but no credentials are configured", ErrProtocol)
)

// MethodError reports an authentication method chosen by the proxy that the
// client cannot use, including 0xFF (no acceptable methods).
type MethodError struct {
	Method byte
}

func (e *MethodError) Error() string {
	if e.Method == methodNoAcceptable {
		return "socks5: proxy accepted none of the offered auth methods"
	}
	return fmt.Sprintf("socks5: unsupported auth method 0x%02x", e.Method)
}

func (e *MethodError) Is(target error) bool {
	return target == ErrProtocol
}

// AuthRejectedError reports a failed username/password sub-negotiation.
type AuthRejectedError struct {
	Status byte
}

func (e *AuthRejectedError) Error() string {
	return fmt.Sprintf("socks5: authentication rejected (status 0x%02x)", e.Status)
}

func (e *AuthRejectedError) Is(target error) bool {
	return target == ErrProtocol
}

// RelayRejectedError reports a CONNECT request refused by the proxy.
type RelayRejectedError struct {
	Reply byte
}

func (e *RelayRejectedError) Error() string {
	return fmt.Sprintf("socks5: connect rejected: %s (0x%02x)", replyText(e.Reply), e.Reply)
}

func (e *RelayRejectedError) Is(target error) bool {
	return target == ErrProtocol
}

func replyText(rep byte) string {
	switch rep {
	case txsocks5.RepServerFailure:
		return "general server failure"
	case txsocks5.RepNotAllowed:
		return "connection not allowed by ruleset"
	case txsocks5.RepNetworkUnreachable:
		return "network unreachable"
	case txsocks5.RepHostUnreachable:
		return "host unreachable"
	case txsocks5.RepConnectionRefused:
		return "connection refused"
	case txsocks5.RepTTLExpired:
		return "TTL expired"
	case txsocks5.RepCommandNotSupported:
		return "command not supported"
	case txsocks5.RepAddressNotSupported:
		return "address type not supported"
	default:
		return "unknown reply"
	}
}

func protoErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProtocol, op, err)
}
