package pool

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrNonPublicAddress is returned when a guarded client dials a loopback,
// private, link-local or otherwise internal address.
var ErrNonPublicAddress = errors.New("refusing to dial non-public address")

// Shared address space (RFC 6598), not covered by net.IP.IsPrivate
var carrierGradeNAT = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// HTTPClientPool is the shared upstream client used by the media proxy
type HTTPClientPool struct {
	client *http.Client
}

// NewHTTPClientPool creates a pooled client. responseHeaderTimeout bounds the
// wait for upstream headers; the body itself is streamed without a deadline.
// With publicOnly set, every dial is checked after DNS resolution and internal
// addresses are refused.
func NewHTTPClientPool(responseHeaderTimeout time.Duration, publicOnly bool) *HTTPClientPool {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if publicOnly {
		dialer.Control = denyNonPublic
	}

	return &HTTPClientPool{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     50,
				IdleConnTimeout:     90 * time.Second,

				DialContext: dialer.DialContext,

				TLSHandshakeTimeout:   10 * time.Second,
				ForceAttemptHTTP2:     true,
				ResponseHeaderTimeout: responseHeaderTimeout,
				ExpectContinueTimeout: 1 * time.Second,

				// Media bytes are relayed as-is
				DisableCompression: true,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Client returns the underlying HTTP client
func (p *HTTPClientPool) Client() *http.Client {
	return p.client
}

// Close closes all idle connections
func (p *HTTPClientPool) Close() {
	p.client.CloseIdleConnections()
}

// IsPublicIP reports whether ip is routable on the public internet
func IsPublicIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	}
	return !carrierGradeNAT.Contains(ip)
}

// denyNonPublic runs on the resolved address, so hostnames that point at
// internal addresses are caught too.
func denyNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if !IsPublicIP(net.ParseIP(host)) {
		return fmt.Errorf("%w: %s", ErrNonPublicAddress, host)
	}
	return nil
}
