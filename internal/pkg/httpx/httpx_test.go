package httpx

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: context.Canceled, want: false},
		{err: context.DeadlineExceeded, want: true},
		{err: statusErr(429), want: true},
		{err: fmt.Errorf("wrapped: %w", statusErr(503)), want: true},
		{err: statusErr(400), want: false},
		{err: fmt.Errorf("plain"), want: false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("IsRetryableError(%v): want=%v got=%v", tc.err, tc.want, got)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second}
	if got := b.Delay(0, nil); got != time.Second {
		t.Fatalf("attempt 0: got %v", got)
	}
	if got := b.Delay(2, nil); got != 4*time.Second {
		t.Fatalf("attempt 2: got %v", got)
	}
	if got := b.Delay(10, nil); got != 10*time.Second {
		t.Fatalf("capped: got %v", got)
	}

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	if got := b.Delay(0, resp); got != 3*time.Second {
		t.Fatalf("retry-after: got %v", got)
	}
	resp.Header.Set("Retry-After", "60")
	if got := b.Delay(0, resp); got != 10*time.Second {
		t.Fatalf("retry-after capped: got %v", got)
	}
}

func TestJitterStaysInBand(t *testing.T) {
	for i := 0; i < 100; i++ {
		got := Jitter(time.Second)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter out of band: %v", got)
		}
	}
	if Jitter(0) != 0 {
		t.Fatalf("zero stays zero")
	}
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); err == nil {
		t.Fatalf("expected context error")
	}
}
