package downloader

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// retryConfig bounds the transport-level retries of the ajax requests.
type retryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

var defaultRetryConfig = retryConfig{
	MaxRetries:   2,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     4 * time.Second,
}

// retryTransport replays requests that hit throttling, a bad gateway, or a
// dial failure. HTTP 522 is left alone: the downloader asks the user.
type retryTransport struct {
	base   http.RoundTripper
	config retryConfig
}

func newRetryTransport(base http.RoundTripper, config retryConfig) *retryTransport {
	return &retryTransport{base: base, config: config}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; attempt <= t.config.MaxRetries && shouldRetry(resp, err); attempt++ {
		if err := SleepContext(req.Context(), t.backoffDelay(attempt)); err != nil {
			discard(resp)
			return nil, err
		}
		replay, cloneErr := replayable(req)
		if cloneErr != nil {
			break
		}
		discard(resp)
		resp, err = t.base.RoundTrip(replay)
	}
	return resp, err
}

// backoffDelay doubles from InitialDelay up to MaxDelay with +/-25% jitter.
func (t *retryTransport) backoffDelay(attempt int) time.Duration {
	delay := t.config.InitialDelay << (attempt - 1)
	if delay > t.config.MaxDelay || delay <= 0 {
		delay = t.config.MaxDelay
	}
	spread := float64(delay) / 4
	return delay + time.Duration(spread*(2*rand.Float64()-1)) //nolint:gosec
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		var opErr *net.OpError
		return errors.As(err, &opErr)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func discard(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
}

// replayable clones req with a fresh body so it can be sent again.
func replayable(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
