package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yilane/rag-related/pkg/types"
)

type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (f *flakyClient) Chat(_ context.Context, _ []types.Message) (*types.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &types.Response{Content: "ok"}, nil
}

func (f *flakyClient) ChatWithStructuredOutput(ctx context.Context, m []types.Message) (*types.Response, error) {
	return f.Chat(ctx, m)
}

func (f *flakyClient) Close() error { return nil }

func TestRetryClientRecoversFromRateLimit(t *testing.T) {
	inner := &flakyClient{failures: 2, err: NewRateLimitError()}
	client := NewRetryClient(inner, &RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
	})

	resp, err := client.Chat(context.Background(), []types.Message{types.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q, want ok", resp.Content)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryClientNonRetryableFailsFast(t *testing.T) {
	permErr := errors.New("invalid api key")
	inner := &flakyClient{failures: 10, err: permErr}
	client := NewRetryClient(inner, &RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
	})

	_, err := client.Chat(context.Background(), nil)
	if !errors.Is(err, permErr) {
		t.Fatalf("error = %v, want %v", err, permErr)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", inner.calls)
	}
}

func TestRetryClientExhaustsRetries(t *testing.T) {
	inner := &flakyClient{failures: 10, err: errors.New("503 service unavailable")}
	client := NewRetryClient(inner, &RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
	})

	_, err := client.Chat(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", inner.calls)
	}
}

func TestRetryClientHonorsContextCancel(t *testing.T) {
	inner := &flakyClient{failures: 10, err: NewRateLimitError()}
	client := NewRetryClient(inner, &RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Chat(ctx, nil)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", err)
	}
}

func TestCalculateDelayQuadratic(t *testing.T) {
	client := NewRetryClient(&flakyClient{}, &RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 4 * time.Second},
		{3, 9 * time.Second},
		{4, 10 * time.Second}, // capped at MaxDelay
	}
	for _, tt := range tests {
		if got := client.calculateDelay(tt.attempt); got != tt.want {
			t.Errorf("calculateDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit type", NewRateLimitError(), true},
		{"rate limit sentinel", ErrRateLimit, true},
		{"429 message", errors.New("HTTP 429 too many requests"), true},
		{"timeout", errors.New("request timeout"), true},
		{"bad gateway", errors.New("502 bad gateway"), true},
		{"auth failure", errors.New("invalid api key"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
