// Package socks5 is the client side of a SOCKS5 proxy connection: parsing a
// socks5:// proxy URL and running the handshake that turns an open stream to
// the proxy into a relayed stream to the real target.
//
// It wraps the frame types in github.com/txthinking/socks5, so this package
// only decides what to send and how to react to what comes back. It does
// not implement a server.
package socks5
