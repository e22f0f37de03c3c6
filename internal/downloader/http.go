package downloader

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httputil"
	"time"

	"go.uber.org/zap"
)

// BrowserUserAgent is sent on every request; the remote service rejects
// clients without a browser-like signature.
const BrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout: 10 * time.Second,
	IdleConnTimeout:     90 * time.Second,
}

// CloseIdleConnections releases pooled connections of the API transport.
func CloseIdleConnections() {
	sharedTransport.CloseIdleConnections()
}

type consistentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *consistentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}
	return t.base.RoundTrip(req)
}

// debugTransport dumps requests and responses at debug level.
type debugTransport struct {
	base   http.RoundTripper
	logger *zap.Logger
	bodies bool
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if ce := t.logger.Check(zap.DebugLevel, "http request"); ce != nil {
		dump, err := httputil.DumpRequestOut(req, t.bodies)
		if err != nil {
			ce.Write(zap.String("url", req.URL.String()), zap.Error(err))
		} else {
			ce.Write(zap.ByteString("dump", dump))
		}
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if ce := t.logger.Check(zap.DebugLevel, "http response"); ce != nil {
		dump, dumpErr := httputil.DumpResponse(resp, t.bodies)
		if dumpErr != nil {
			ce.Write(zap.Int("status", resp.StatusCode), zap.Error(dumpErr))
		} else {
			ce.Write(zap.ByteString("dump", dump))
		}
	}
	return resp, nil
}

func withDebug(base http.RoundTripper, logger *zap.Logger, bodies bool) http.RoundTripper {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return base
	}
	return &debugTransport{base: base, logger: logger, bodies: bodies}
}

// NewHTTPClient builds the client used for the y2mate ajax calls. A zero
// timeout keeps the client default of no overall deadline.
func NewHTTPClient(timeout time.Duration, logger *zap.Logger) *http.Client {
	var transport http.RoundTripper = &consistentTransport{
		base:      sharedTransport,
		userAgent: BrowserUserAgent,
	}
	transport = withDebug(transport, logger, true)
	transport = newRetryTransport(transport, defaultRetryConfig)
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// newFileClient builds the client for one direct file request. Certificate
// checks are off because the y2mate file CDN serves blobs without a valid
// certificate. The timeout bounds the wait for response headers only, so
// long transfers are not cut off.
func newFileClient(timeout time.Duration, logger *zap.Logger) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	}
	return &http.Client{
		Transport: withDebug(&consistentTransport{base: transport, userAgent: BrowserUserAgent}, logger, false),
	}
}
