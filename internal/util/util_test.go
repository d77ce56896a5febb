package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, "User-agent: factlens\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("factlens/0.1 (+https://example.com)", server.Client())
	ctx := context.Background()

	tests := []struct {
		path    string
		allowed bool
	}{
		{"/article/1", true},
		{"/private/page", false},
		{"", true},
	}
	for _, tt := range tests {
		allowed, delay, err := checker.CanFetch(ctx, server.URL+tt.path)
		if err != nil {
			t.Fatalf("CanFetch(%q): %v", tt.path, err)
		}
		if allowed != tt.allowed {
			t.Errorf("CanFetch(%q) = %v, want %v", tt.path, allowed, tt.allowed)
		}
		if delay != 2*time.Second {
			t.Errorf("crawl delay = %v, want 2s", delay)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", hits.Load())
	}
}

func TestRobotsChecker_StatusHandling(t *testing.T) {
	tests := []struct {
		status  int
		allowed bool
	}{
		{http.StatusNotFound, true},
		{http.StatusForbidden, true},
		{http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			checker := NewRobotsChecker("factlens", server.Client())
			if got := checker.IsAllowed(context.Background(), server.URL+"/page"); got != tt.allowed {
				t.Errorf("IsAllowed = %v, want %v", got, tt.allowed)
			}
		})
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	checker := NewRobotsChecker("factlens", &http.Client{Timeout: time.Second})
	allowed, _, err := checker.CanFetch(context.Background(), addr+"/page")
	if err != nil || !allowed {
		t.Errorf("expected allowed without error, got %v, %v", allowed, err)
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker("factlens", nil)
	if _, _, err := checker.CanFetch(context.Background(), "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"factlens/0.1 (+https://x)": "factlens",
		"Mozilla/5.0 (X11)":         "Mozilla",
		"plain":                     "plain",
		"":                          "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "http://secure.internal:3129", "skip.example.com")

	tests := []struct {
		target string
		want   string
	}{
		{"http://news.example.com/a", "http://proxy.internal:3128"},
		{"https://news.example.com/a", "http://secure.internal:3129"},
		{"https://skip.example.com/a", ""},
	}

	for _, tt := range tests {
		u, _ := url.Parse(tt.target)
		got, err := proxy(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("proxy(%s): %v", tt.target, err)
		}
		if tt.want == "" {
			if got != nil {
				t.Errorf("proxy(%s) = %v, want direct", tt.target, got)
			}
			continue
		}
		if got == nil || got.String() != tt.want {
			t.Errorf("proxy(%s) = %v, want %s", tt.target, got, tt.want)
		}
	}
}

func TestNewHTTPClient_StopsRedirects(t *testing.T) {
	var hops atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hops.Add(1)
		http.Redirect(w, r, fmt.Sprintf("%s/hop/%d", server.URL, n), http.StatusFound)
	}))
	defer server.Close()

	client := NewHTTPClient(5*time.Second, 3, "", "", "")
	_, err := client.Get(server.URL)
	if err == nil {
		t.Fatal("expected redirect error")
	}
	if hops.Load() != 3 {
		t.Errorf("expected 3 requests before stopping, got %d", hops.Load())
	}
}
