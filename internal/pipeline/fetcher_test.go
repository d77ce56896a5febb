package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

const articleHTML = `<html><head><title>City Bridge Story</title>
<script>var tracking = "do not include";</script></head>
<body><nav>Home | News</nav>
<article><h1>City Bridge Story</h1>
<p>The city bridge was completed in 1890 after six years of construction work along the river bank.</p>
<p>Records from the municipal archive show it was first painted grey and only later repainted red.</p>
</article></body></html>`

func testFetchConfig() model.FetchConfig {
	cfg := model.DefaultConfig().Fetch
	cfg.Enabled = true
	cfg.Timeout = 5 * time.Second
	cfg.RespectRobots = false
	return cfg
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "factlens/") {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, articleHTML)
	}))
	defer server.Close()

	result, err := NewFetcher(testFetchConfig()).Fetch(context.Background(), server.URL+"/story")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if result.Title != "City Bridge Story" {
		t.Errorf("Title = %q", result.Title)
	}
	if !strings.Contains(result.Text, "completed in 1890") {
		t.Errorf("missing article text: %q", result.Text)
	}
	if strings.Contains(result.Text, "do not include") {
		t.Error("script content leaked into text")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
}

func TestFetcher_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "  plain statement  ")
	}))
	defer server.Close()

	result, err := NewFetcher(testFetchConfig()).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Text != "plain statement" {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestFetcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"binary", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/zip")
			_, _ = w.Write([]byte("PK\x03\x04"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			if _, err := NewFetcher(testFetchConfig()).Fetch(context.Background(), server.URL); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFetcher_RespectsRobots(t *testing.T) {
	var pageHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		pageHits++
		_, _ = fmt.Fprint(w, articleHTML)
	}))
	defer server.Close()

	cfg := testFetchConfig()
	cfg.RespectRobots = true
	_, err := NewFetcher(cfg).Fetch(context.Background(), server.URL+"/private/story")
	if !errors.Is(err, ErrDisallowed) {
		t.Fatalf("expected ErrDisallowed, got %v", err)
	}
	if pageHits != 0 {
		t.Errorf("disallowed page was requested %d times", pageHits)
	}
}

func TestFetcher_ExcerptIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, strings.Repeat("word ", 1000))
	}))
	defer server.Close()

	cfg := testFetchConfig()
	cfg.MaxExcerpt = 50
	excerpt, err := NewFetcher(cfg).Excerpt(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Excerpt: %v", err)
	}
	if !strings.HasSuffix(excerpt, " [...]") {
		t.Errorf("expected truncation marker, got %q", excerpt)
	}
	if len(strings.TrimSuffix(excerpt, " [...]")) != 50 {
		t.Errorf("excerpt length = %d", len(excerpt))
	}
}

func TestExtractReadable_FallsBackToVisibleText(t *testing.T) {
	body := []byte(`<html><head><title> Short </title><style>.x{}</style></head><body><div>Tiny page.</div></body></html>`)

	title, text := ExtractReadable(body, nil)
	if title != "Short" {
		t.Errorf("title = %q", title)
	}
	if text != "Tiny page." {
		t.Errorf("text = %q", text)
	}
}
