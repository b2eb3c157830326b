package server

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewClient returns the HTTP client shared by every probe. With forceIPv6
// endpoints are dialed over tcp6 only, so a dual stack endpoint reports the
// IPv6 address.
func NewClient(forceIPv6 bool) *http.Client {
	dial := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4
	t.DialContext = dial.DialContext
	if forceIPv6 {
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dial.DialContext(ctx, "tcp6", addr)
		}
	}

	return &http.Client{Transport: t}
}
