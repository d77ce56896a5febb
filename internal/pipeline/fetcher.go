package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/util"
	"github.com/ppiankov/factlens/internal/worker"
	"golang.org/x/net/html"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("fetch disallowed by robots.txt")

// minReadableChars is the shortest readability output trusted over the raw text walk
const minReadableChars = 100

// Fetcher retrieves the page behind a bare URL submission and reduces it to
// readable text for the prompt
type Fetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	userAgent  string
	maxBytes   int64
	maxExcerpt int
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(cfg model.FetchConfig) *Fetcher {
	client := util.NewHTTPClient(cfg.Timeout, 3, cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	f := &Fetcher{
		httpClient: client,
		limiter:    worker.NewLimiter(1, 2),
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		maxExcerpt: cfg.MaxExcerpt,
	}
	if f.maxBytes <= 0 {
		f.maxBytes = 2_000_000
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, client)
	}
	return f
}

// FetchResult contains the readable text of a fetched page
type FetchResult struct {
	FinalURL    string
	StatusCode  int
	ContentType string
	Title       string
	Text        string
}

// Fetch retrieves rawURL and extracts its readable text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots.txt: %w", err)
		}
		if !allowed {
			return nil, ErrDisallowed
		}
		// Batch runs may fetch the same host repeatedly
		if crawlDelay > 0 {
			if u, err := url.Parse(rawURL); err == nil {
				f.limiter.SetRate(u.Host, 1/crawlDelay.Seconds(), 1)
			}
		}
	}

	if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	result := &FetchResult{
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	mediaType, _, _ := mime.ParseMediaType(result.ContentType)
	switch {
	case mediaType == "" || strings.Contains(mediaType, "html"):
		result.Title, result.Text = ExtractReadable(body, resp.Request.URL)
	case strings.HasPrefix(mediaType, "text/"):
		result.Text = strings.TrimSpace(string(body))
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}

	return result, nil
}

// Excerpt fetches rawURL and returns its title and text, bounded to the
// configured excerpt length
func (f *Fetcher) Excerpt(ctx context.Context, rawURL string) (string, error) {
	res, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text := res.Text
	if res.Title != "" {
		text = res.Title + "\n\n" + text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", res.FinalURL)
	}
	return truncateRunes(text, f.maxExcerpt), nil
}

// ExtractReadable returns the page title and main article text. It prefers
// readability output and falls back to every visible text node.
func ExtractReadable(body []byte, pageURL *url.URL) (string, string) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}
	title := strings.TrimSpace(findTitle(doc))
	if pageURL == nil {
		pageURL = &url.URL{}
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		if text := collapseSpace(article.TextContent); len(text) >= minReadableChars {
			return title, text
		}
	}

	return title, collapseSpace(extractVisibleText(doc))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// extractVisibleText extracts body text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "nav", "footer":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// collapseSpace keeps paragraph breaks but folds other runs of whitespace
func collapseSpace(s string) string {
	var paras []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + " [...]"
}
