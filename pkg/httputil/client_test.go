package httputil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/wonny/nice/pkg/logger"
)

// trackedBody records whether a response body was closed
type trackedBody struct {
	*strings.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

// flakyTransport serves 500s before finally answering 200
type flakyTransport struct {
	failures int
	calls    int
	bodies   []*trackedBody
}

func (t *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	status := http.StatusOK
	if t.calls <= t.failures {
		status = http.StatusInternalServerError
	}
	body := &trackedBody{Reader: strings.NewReader("payload")}
	t.bodies = append(t.bodies, body)
	return &http.Response{
		StatusCode: status,
		Body:       body,
		Header:     http.Header{},
		Request:    req,
	}, nil
}

func newFlakyClient(t *testing.T, failures int) (*Client, *flakyTransport) {
	t.Helper()
	transport := &flakyTransport{failures: failures}
	c := New(logger.Nop()).WithRetry(3, time.Millisecond)
	c.httpClient.Transport = transport
	return c, transport
}

func TestRetryClosesDiscardedResponses(t *testing.T) {
	c, transport := newFlakyClient(t, 2)

	resp, err := c.Get(context.Background(), "http://example.test/quote")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if transport.calls != 3 {
		t.Fatalf("calls = %d, want 3", transport.calls)
	}
	for i, body := range transport.bodies[:2] {
		if !body.closed {
			t.Errorf("retried response %d body left open", i+1)
		}
	}
	if transport.bodies[2].closed {
		t.Error("final response body must stay open for the caller")
	}
}

func TestRetryReturnsLastResponseWhenExhausted(t *testing.T) {
	c, transport := newFlakyClient(t, 10)

	resp, err := c.Get(context.Background(), "http://example.test/quote")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d, want 500", resp.StatusCode)
	}
	// MaxRetries 3 means four attempts total
	if transport.calls != 4 {
		t.Fatalf("calls = %d, want 4", transport.calls)
	}
	for i, body := range transport.bodies[:3] {
		if !body.closed {
			t.Errorf("retried response %d body left open", i+1)
		}
	}
}
