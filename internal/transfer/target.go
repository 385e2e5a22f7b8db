package transfer

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Target identifies the server instance the client talks to.
type Target struct {
	Host string
	Port int
}

// String returns host:port for display.
func (t Target) String() string {
	return net.JoinHostPort(t.hostOnly(), strconv.Itoa(t.Port))
}

// BaseURL returns the scheme, host and port with no trailing slash. A host
// given with an explicit http:// or https:// scheme keeps that scheme.
func (t Target) BaseURL() string {
	scheme := "http"
	host := t.Host
	if i := strings.Index(host, "://"); i >= 0 {
		scheme = strings.ToLower(host[:i])
		host = host[i+3:]
	}
	host = strings.TrimRight(host, "/")
	u := url.URL{Scheme: scheme, Host: net.JoinHostPort(host, strconv.Itoa(t.Port))}
	return u.String()
}

func (t Target) hostOnly() string {
	host := t.Host
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return strings.TrimRight(host, "/")
}
