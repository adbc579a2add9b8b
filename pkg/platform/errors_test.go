package platform

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetry(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantWait time.Duration
		want     bool
	}{
		{
			name:     "plain retry error",
			err:      &RetryError{After: 2 * time.Second},
			wantWait: 2 * time.Second,
			want:     true,
		},
		{
			name:     "wrapped retry error",
			err:      fmt.Errorf("search: %w", &RetryError{After: time.Second}),
			wantWait: time.Second,
			want:     true,
		},
		{
			name: "unrelated error",
			err:  errors.New("boom"),
			want: false,
		},
		{
			name: "unauthorized is not a retry",
			err:  ErrUnauthorized,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wait, ok := IsRetry(tt.err)
			if ok != tt.want {
				t.Fatalf("IsRetry() = %v, want %v", ok, tt.want)
			}
			if wait != tt.wantWait {
				t.Errorf("wait = %v, want %v", wait, tt.wantWait)
			}
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(ErrUnauthorized) {
		t.Error("sentinel not detected")
	}
	if !IsUnauthorized(fmt.Errorf("identify: %w", ErrUnauthorized)) {
		t.Error("wrapped sentinel not detected")
	}
	if IsUnauthorized(&RetryError{After: time.Second}) {
		t.Error("retry error misclassified as unauthorized")
	}
}
