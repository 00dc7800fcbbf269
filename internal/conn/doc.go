// Package conn holds connection plumbing shared by the dialer and the CLI:
// a keepalive-applying listener, byte-counting connections and
// bidirectional copy.
package conn
