package validate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/util"
	"github.com/ppiankov/factlens/internal/worker"
)

// LinkChecker checks evidence links concurrently. Each URL gets exactly one
// attempt; failures are reported, never retried.
type LinkChecker struct {
	httpClient *http.Client
	workers    int
	userAgent  string
	limiter    *worker.Limiter
	authority  *AuthorityClassifier
}

// NewLinkChecker creates a link checker. Proxy and user agent settings are
// shared with the page fetcher.
func NewLinkChecker(cfg model.LinksConfig, authConfig *model.AuthorityConfig, fetch model.FetchConfig) *LinkChecker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &LinkChecker{
		httpClient: util.NewHTTPClient(timeout, 3, fetch.HTTPProxy, fetch.HTTPSProxy, fetch.NoProxy),
		workers:    workers,
		userAgent:  fetch.UserAgent,
		limiter:    worker.NewLimiter(2, 2),
		authority:  NewAuthorityClassifier(authConfig),
	}
}

// Check checks every evidence URL in r. The result has one entry per claim and
// URL pair, in claim order; a URL cited by several claims is requested once.
func (c *LinkChecker) Check(ctx context.Context, r *model.AnalysisResult) []model.LinkCheck {
	if r == nil {
		return nil
	}

	checked := make(map[string]model.LinkCheck)
	for _, lc := range c.CheckURLs(ctx, r.EvidenceURLs()) {
		checked[lc.URL] = lc
	}

	var out []model.LinkCheck
	for _, claim := range r.Claims {
		seen := make(map[string]bool)
		for _, ev := range claim.Evidence {
			if ev.SourceURL == "" || seen[ev.SourceURL] {
				continue
			}
			seen[ev.SourceURL] = true
			lc := checked[ev.SourceURL]
			lc.ClaimID = claim.ID
			out = append(out, lc)
		}
	}
	return out
}

// CheckURLs checks urls concurrently and returns one result per URL, in order
func (c *LinkChecker) CheckURLs(ctx context.Context, urls []string) []model.LinkCheck {
	if len(urls) == 0 {
		return []model.LinkCheck{}
	}

	pool := worker.NewPool(ctx, c.workers)
	pool.Start()
	for _, u := range urls {
		pool.Submit(&linkJob{url: u, checker: c})
	}

	results := pool.Wait()
	out := make([]model.LinkCheck, len(urls))
	for i, res := range results {
		if lr, ok := res.(*linkResult); ok {
			out[i] = lr.check
			continue
		}
		out[i] = model.LinkCheck{
			URL:       urls[i],
			Authority: c.authority.Classify(urls[i]),
			Error:     "not checked: " + errString(ctx.Err()),
		}
	}
	return out
}

type linkJob struct {
	url     string
	checker *LinkChecker
}

func (j *linkJob) Execute(ctx context.Context) worker.Result {
	return &linkResult{check: j.checker.checkOne(ctx, j.url)}
}

type linkResult struct {
	check model.LinkCheck
}

// GetError is always nil; failures are recorded on the LinkCheck
func (r *linkResult) GetError() error {
	return nil
}

func (c *LinkChecker) checkOne(ctx context.Context, rawURL string) model.LinkCheck {
	result := model.LinkCheck{
		URL:       rawURL,
		Authority: c.authority.Classify(rawURL),
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		result.Error = "not an http(s) URL"
		return result
	}

	if err := c.limiter.WaitURL(ctx, rawURL); err != nil {
		result.Error = fmt.Sprintf("rate limit: %v", err)
		return result
	}

	resp, err := c.request(ctx, http.MethodHead, rawURL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		// Some servers refuse HEAD outright
		_ = resp.Body.Close()
		resp, err = c.request(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		// A cancelled check says nothing about the link itself
		result.IsDead = ctx.Err() == nil
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.IsDead = true
	}

	if final := resp.Request.URL.String(); final != rawURL {
		result.RedirectURL = final
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			result.LastModified = &t
		}
	}

	return result
}

func (c *LinkChecker) request(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

// Problems returns a one-line description of every dead or unreachable link
func Problems(checks []model.LinkCheck) []string {
	var out []string
	for _, lc := range checks {
		switch {
		case lc.IsDead && lc.StatusCode != 0:
			out = append(out, fmt.Sprintf("dead link (%d): %s", lc.StatusCode, lc.URL))
		case lc.IsDead:
			out = append(out, fmt.Sprintf("unreachable link: %s", lc.URL))
		case !lc.IsAccessible && lc.Error != "":
			out = append(out, fmt.Sprintf("unchecked link: %s (%s)", lc.URL, lc.Error))
		}
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return "skipped"
	}
	return err.Error()
}
