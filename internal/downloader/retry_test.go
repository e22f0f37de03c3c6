package downloader

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var fastRetry = retryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

func TestRetryTransportStatuses(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCode  int
		wantCalls int32
	}{
		{name: "success", statuses: []int{200}, wantCode: 200, wantCalls: 1},
		{name: "bad gateway then ok", statuses: []int{502, 502, 200}, wantCode: 200, wantCalls: 3},
		{name: "throttled then ok", statuses: []int{429, 200}, wantCode: 200, wantCalls: 2},
		{name: "cloudflare 522 is not retried", statuses: []int{522}, wantCode: 522, wantCalls: 1},
		{name: "forbidden is final", statuses: []int{403}, wantCode: 403, wantCalls: 1},
		{name: "exhausted", statuses: []int{503, 503, 503, 503}, wantCode: 503, wantCalls: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
				n := atomic.AddInt32(&calls, 1)
				code := tt.statuses[len(tt.statuses)-1]
				if int(n) <= len(tt.statuses) {
					code = tt.statuses[n-1]
				}
				return &http.Response{StatusCode: code, Body: http.NoBody}, nil
			}), fastRetry)

			req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
			resp, err := transport.RoundTrip(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.StatusCode)
			}
			if c := atomic.LoadInt32(&calls); c != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, c)
			}
		})
	}
}

func TestRetryTransportStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return &http.Response{StatusCode: 502, Body: http.NoBody}, nil
	}), fastRetry)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://example.com", nil)
	if _, err := transport.RoundTrip(req); err == nil {
		t.Fatal("expected context cancellation error")
	}
	if c := atomic.LoadInt32(&calls); c != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", c)
	}
}

func TestRetryTransportReplaysFormBody(t *testing.T) {
	var calls int32
	transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return nil, &net.OpError{Op: "dial", Err: &timeoutError{}}
		}
		body, _ := io.ReadAll(req.Body)
		if string(body) != "k_query=abc&ajax=1" {
			t.Errorf("attempt %d: unexpected body %q", n, body)
		}
		return &http.Response{StatusCode: 200, Body: http.NoBody}, nil
	}), fastRetry)

	req, _ := http.NewRequest(http.MethodPost, "https://example.com", strings.NewReader("k_query=abc&ajax=1"))
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected success on second call, got %d after %d calls", resp.StatusCode, calls)
	}
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	rt := newRetryTransport(nil, retryConfig{MaxRetries: 5, InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond})

	if d := rt.backoffDelay(1); d < 75*time.Millisecond || d > 125*time.Millisecond {
		t.Fatalf("attempt 1 delay out of range: %v", d)
	}
	if d := rt.backoffDelay(2); d < 150*time.Millisecond || d > 250*time.Millisecond {
		t.Fatalf("attempt 2 delay out of range: %v", d)
	}
	if d := rt.backoffDelay(5); d > 375*time.Millisecond {
		t.Fatalf("attempt 5 delay not capped: %v", d)
	}
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); err == nil {
		t.Fatal("expected canceled context to end the sleep")
	}
	if err := SleepContext(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true } //nolint:staticcheck
