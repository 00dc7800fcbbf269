// Package dialer establishes outbound TCP streams, either directly or
// through a SOCKS5 proxy. Tor onion services are reachable only through the
// proxy path.
//
// One dial is a single sequential attempt: there is no retry, no pooling
// and no fallback between the direct and proxied paths. Deadlines come from
// the caller's context, plus an optional bound on proxy negotiation.
package dialer
