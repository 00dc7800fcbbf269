//go:build !unix && !windows

package socket

import "errors"

func ReuseAddr(s RawSocket) (RawSocket, error) {
	return s, errors.ErrUnsupported
}

func NoDelay(s RawSocket) (RawSocket, error) {
	return s, errors.ErrUnsupported
}

func SendBuffer(int) Transformer {
	return func(s RawSocket) (RawSocket, error) {
		return s, errors.ErrUnsupported
	}
}

func RecvBuffer(int) Transformer {
	return func(s RawSocket) (RawSocket, error) {
		return s, errors.ErrUnsupported
	}
}
