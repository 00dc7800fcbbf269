package socks5

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrConfig is the category of all proxy configuration errors.
	ErrConfig = errors.New("socks5 config")

	ErrUnsupportedScheme = fmt.Errorf("%w: unsupported proxy scheme", ErrConfig)
	ErrMissingHost       = fmt.Errorf("%w: missing host", ErrConfig)
	ErrMissingPort       = fmt.Errorf("%w: missing port", ErrConfig)
)

// Auth holds username/password credentials for RFC 1929 authentication.
type Auth struct {
	Username string
	Password string
}

// ProxyConfig is a parsed socks5:// proxy URL.
type ProxyConfig struct {
	// ProxyURL is the proxy's dialable host:port.
	ProxyURL string
	// Auth is nil when the URL carries no username.
	Auth *Auth
}

// ParseProxyURL parses a URL of the form socks5://[user[:pass]@]host:port.
//
// Host and port are both required; no default port is assumed.
func ParseProxyURL(s string) (ProxyConfig, error) {
	u, err := url.Parse(s)
	if err != nil {
		return ProxyConfig{}, fmt.Errorf("%w: invalid url: %w", ErrConfig, err)
	}

	if !strings.EqualFold(u.Scheme, "socks5") {
		return ProxyConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return ProxyConfig{}, ErrMissingHost
	}
	port := u.Port()
	if port == "" {
		return ProxyConfig{}, ErrMissingPort
	}
	if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
		return ProxyConfig{}, fmt.Errorf("%w: invalid port %q", ErrConfig, port)
	}

	var auth *Auth
	if u.User != nil && u.User.Username() != "" {
		password, _ := u.User.Password()
		auth = &Auth{Username: u.User.Username(), Password: password}
	}

	return ProxyConfig{ProxyURL: net.JoinHostPort(host, port), Auth: auth}, nil
}

// String returns the config as a URL with the password elided.
func (c ProxyConfig) String() string {
	u := url.URL{Scheme: "socks5", Host: c.ProxyURL}
	if c.Auth != nil {
		u.User = url.User(c.Auth.Username)
	}
	return u.String()
}
