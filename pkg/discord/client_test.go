package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

func TestDeleteMessage_Classification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		wantOK     bool
		wantWait   time.Duration
		wantUnauth bool
	}{
		{
			name:   "deleted",
			status: http.StatusNoContent,
			wantOK: true,
		},
		{
			name:       "forbidden is per-item fatal",
			status:     http.StatusForbidden,
			wantUnauth: true,
		},
		{
			name:       "throttled with header",
			status:     http.StatusTooManyRequests,
			retryAfter: "5",
			wantWait:   5 * time.Second,
		},
		{
			name:     "throttled without header defaults to 1s",
			status:   http.StatusTooManyRequests,
			wantWait: time.Second,
		},
		{
			name:     "unknown status treated as transient",
			status:   http.StatusInternalServerError,
			wantWait: time.Second,
		},
		{
			name:       "unparseable header falls back",
			status:     http.StatusTooManyRequests,
			retryAfter: "soon",
			wantWait:   time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("method = %s, want DELETE", r.Method)
				}
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient("token", WithBaseURL(srv.URL))
			err := client.DeleteMessage(context.Background(), "c1", "m1")

			if tt.wantOK {
				if err != nil {
					t.Fatalf("DeleteMessage() = %v, want nil", err)
				}
				return
			}
			if tt.wantUnauth {
				if !platform.IsUnauthorized(err) {
					t.Fatalf("DeleteMessage() = %v, want unauthorized", err)
				}
				return
			}
			wait, ok := platform.IsRetry(err)
			if !ok {
				t.Fatalf("DeleteMessage() = %v, want retry error", err)
			}
			if wait != tt.wantWait {
				t.Errorf("wait = %v, want %v", wait, tt.wantWait)
			}
		})
	}
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "tok" {
			t.Errorf("Authorization = %q, want %q", r.Header.Get("Authorization"), "tok")
		}
		w.Write([]byte(`{"id":"42","username":"kekst","discriminator":"0"}`))
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	u, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if u.ID != "42" || u.displayName() != "kekst" {
		t.Errorf("Me() = %+v", u)
	}
}

func TestMe_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient("bad", WithBaseURL(srv.URL))
	if _, err := client.Me(context.Background()); !platform.IsUnauthorized(err) {
		t.Errorf("Me() = %v, want unauthorized", err)
	}
}

func TestGetList_NonArrayIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"401: Unauthorized","code":0}`))
	}))
	defer srv.Close()

	client := NewClient("bad", WithBaseURL(srv.URL))
	if _, err := client.DMChannels(context.Background()); !platform.IsUnauthorized(err) {
		t.Errorf("DMChannels() = %v, want unauthorized", err)
	}
}

func TestSearch_IndexingLag(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantWait time.Duration
	}{
		{
			name:     "explicit retry_after",
			body:     `{"document_indexed":0,"retry_after":4}`,
			wantWait: 4 * time.Second,
		},
		{
			name:     "missing retry_after defaults to 2s",
			body:     `{"document_indexed":0}`,
			wantWait: 2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("tok", WithBaseURL(srv.URL))
			_, err := client.Search(context.Background(), "channels", "c1", nil)
			wait, ok := platform.IsRetry(err)
			if !ok {
				t.Fatalf("Search() = %v, want retry error", err)
			}
			if wait != tt.wantWait {
				t.Errorf("wait = %v, want %v", wait, tt.wantWait)
			}
		})
	}
}
