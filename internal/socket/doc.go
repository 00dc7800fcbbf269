// Package socket builds TCP sockets whose low-level options are under the
// caller's control.
//
// Every socket the package creates, listening or outbound, passes once
// through a caller-supplied Transformer between creation and bind/connect.
// The stock transformers in this package (ReuseAddr, NoDelay, SendBuffer,
// RecvBuffer, Transparent) cover common setsockopt needs; anything else can
// be written against RawSocket.Fd with golang.org/x/sys.
//
// On unix, Listen drives the socket by hand so that it can apply
// SO_REUSEADDR before the transformer, tolerate an already-bound socket, and
// use a fixed backlog; the finished descriptor is then handed to the Go
// netpoller. Elsewhere, and for all outbound sockets, the transformer runs
// from the Control hook of net.ListenConfig or net.Dialer.
package socket
