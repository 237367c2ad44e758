// Package httpclient configures the HTTP client shared by upstream adapters.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// UserAgent is sent on every outbound request; the geocoding site rejects
// clients without a browser-like agent.
const UserAgent = "Mozilla/5.0"

type uaTransport struct {
	next http.RoundTripper
}

func (t uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.next.RoundTrip(req)
}

// NewOutbound creates the process wide session. Per call deadlines are set by
// each adapter through the request context.
func NewOutbound() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: uaTransport{next: transport},
		Timeout:   30 * time.Second,
	}
}
