// Package transport builds the HTTP round trippers used for platform API calls.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// Kind selects an upstream transport.
type Kind string

const (
	// KindChrome presents a browser TLS fingerprint. Storefront-facing CDN
	// edges throttle Go's default ClientHello under load.
	KindChrome Kind = "chrome"
	// KindStandard is net/http's default transport.
	KindStandard Kind = "standard"
)

// ParseKind maps a configuration value to a Kind. Blank means chrome.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindChrome:
		return KindChrome, nil
	case KindStandard:
		return KindStandard, nil
	default:
		return "", fmt.Errorf("unknown upstream transport %q (want chrome or standard)", s)
	}
}

// New returns the round tripper for kind.
func New(kind Kind, timeout time.Duration) http.RoundTripper {
	if kind == KindStandard {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSHandshakeTimeout = timeout
		t.ResponseHeaderTimeout = timeout
		return t
	}
	return NewChromeTransport(timeout)
}

// NewChromeTransport returns a round tripper that dials with uTLS using
// Chrome's ClientHello. ALPN picks h2 or http/1.1; requests go over HTTP/2
// first and retry on HTTP/1.1 when the server refuses it.
func NewChromeTransport(timeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: timeout}
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialChrome(ctx, dialer, network, addr)
	}

	return &chromeTransport{
		h2: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dial(ctx, network, addr)
			},
			ReadIdleTimeout: timeout,
		},
		h1: &http.Transport{
			DialTLSContext:      dial,
			TLSHandshakeTimeout: timeout,
			MaxIdleConnsPerHost: 8,
		},
	}
}

type chromeTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

func (t *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.h1.RoundTrip(req)
	}
	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// Body already consumed; cannot replay on HTTP/1.1.
		return nil, err
	}
	if req.GetBody != nil {
		body, berr := req.GetBody()
		if berr != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.Body = body
	}
	return t.h1.RoundTrip(req)
}

func dialChrome(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", host, err)
	}
	return tlsConn, nil
}
