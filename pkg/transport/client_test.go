package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient() *Client {
	return NewClient(Config{ConnectTimeout: 5 * time.Second})
}

func TestGet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); ua != userAgent {
				t.Errorf("User-Agent = %q, want %q", ua, userAgent)
			}
			io.WriteString(w, "payload")
		}))
		defer srv.Close()

		resp, cancel, err := testClient().Get(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		defer cancel()
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "payload" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("RedirectRefused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
		}))
		defer srv.Close()

		_, _, err := testClient().Get(context.Background(), srv.URL)
		var serr *StatusError
		if !errors.As(err, &serr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if serr.Code != http.StatusFound {
			t.Errorf("Code = %d, want 302", serr.Code)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, _, err := testClient().Get(context.Background(), srv.URL)
		var serr *StatusError
		if !errors.As(err, &serr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if serr.Code != http.StatusNotFound {
			t.Errorf("Code = %d, want 404", serr.Code)
		}
	})

	t.Run("TotalTimeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer srv.Close()

		c := NewClient(Config{ConnectTimeout: 5 * time.Second, TotalTimeout: 100 * time.Millisecond})
		if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
			t.Error("expected timeout error")
		}
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, _, err := testClient().Get(ctx, srv.URL); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://host", "/a/b", "https://host/a/b"},
		{"https://host/", "/a/b", "https://host/a/b"},
		{"https://host", "a/b", "https://host/a/b"},
		{"https://host/", "a/b", "https://host/a/b"},
		{"https://host//", "a", "https://host/a"},
	}
	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
