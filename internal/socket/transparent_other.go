//go:build !linux && !freebsd && !openbsd

package socket

import "errors"

const TransparentSupported = false

func Transparent(s RawSocket) (RawSocket, error) {
	return s, errors.ErrUnsupported
}
