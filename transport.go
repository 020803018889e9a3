package twocaptcha

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// newTransport returns the round tripper used for API calls. An empty
// browser name keeps the standard TLS stack; any other name must match
// a profile and dials with that browser's ClientHello.
func newTransport(browser string) (http.RoundTripper, error) {
	if browser == "" {
		base := http.DefaultTransport.(*http.Transport).Clone()
		return &decodingTransport{next: base}, nil
	}
	profile, ok := lookupProfile(browser)
	if !ok {
		return nil, fmt.Errorf("unknown browser profile %q (supported: chrome, firefox)", browser)
	}
	return &decodingTransport{next: newFingerprintTransport(profile)}, nil
}

// fingerprintTransport uses uTLS to establish TLS connections with
// browser-like fingerprints. HTTPS goes over HTTP/2, plain HTTP falls
// back to HTTP/1.1.
type fingerprintTransport struct {
	profile BrowserProfile
	h2      *http2.Transport
	h1      *http.Transport
}

func newFingerprintTransport(profile BrowserProfile) *fingerprintTransport {
	rt := &fingerprintTransport{profile: profile}

	// The *tls.Config parameter is ignored since the handshake is done by uTLS.
	rt.h2 = &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return rt.dialTLS(ctx, network, addr)
		},
	}
	rt.h1 = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return rt.dialTLS(ctx, network, addr)
		},
	}
	return rt
}

func (rt *fingerprintTransport) dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{}
	tcpConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	tlsConn := utls.UClient(tcpConn, &utls.Config{
		ServerName: host,
		NextProtos: []string{"h2", "http/1.1"},
	}, rt.profile.TLSHello)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		tcpConn.Close()
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}
	return tlsConn, nil
}

func (rt *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return rt.h1.RoundTrip(req)
	}
	return rt.h2.RoundTrip(req)
}

// decodingTransport asks for compressed replies and transparently
// decodes gzip and brotli bodies.
type decodingTransport struct {
	next http.RoundTripper
}

func (t *decodingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", "br, gzip")
	}
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("gzip decode failed: %w", err)
		}
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		return resp, nil
	}

	resp.Body = &decodedBody{Reader: reader, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

type decodedBody struct {
	io.Reader
	raw io.ReadCloser
}

func (b *decodedBody) Close() error {
	return b.raw.Close()
}
