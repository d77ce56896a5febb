package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/history"
	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/media"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/prompt"
	"github.com/ppiankov/factlens/internal/score"
	"github.com/ppiankov/factlens/internal/validate"
	"github.com/ppiankov/factlens/internal/worker"
	"go.uber.org/zap"
)

// Invoker runs one generation call for a normalized request
type Invoker interface {
	Invoke(ctx context.Context, req *model.AnalysisRequest) (*llm.Invocation, error)
}

// Submission is what a caller submits: free text, a file, or both
type Submission struct {
	Text string
	File *media.File
	Mode model.Mode
}

// Outcome is a completed analysis together with everything learned while
// producing it. Result is never modified after extraction apart from the
// metadata the service reported outside the JSON body.
type Outcome struct {
	Result       *model.AnalysisResult
	Warnings     []extract.Violation
	Links        []model.LinkCheck
	LinkProblems []string
	Support      model.Support
	Cached       bool
	Duration     time.Duration
	HistoryID    string
}

// Pipeline orchestrates one analysis: normalize, optional URL prefetch,
// generation, extraction, invariant check, optional link check, support
// summary, then cache and history bookkeeping
type Pipeline struct {
	normalizer *media.Normalizer
	invoker    Invoker
	fetcher    *Fetcher
	cache      cache.Cache
	cacheTTL   time.Duration
	links      *validate.LinkChecker
	scorer     *score.Scorer
	history    history.Store
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithFetcher enables page prefetch for bare URL submissions
func WithFetcher(f *Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithCache serves repeat submissions from c
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// WithLinkChecker checks evidence links after extraction
func WithLinkChecker(c *validate.LinkChecker) Option {
	return func(p *Pipeline) { p.links = c }
}

// WithAuthority sets the domain lists used to weigh evidence sources
func WithAuthority(cfg *model.AuthorityConfig) Option {
	return func(p *Pipeline) { p.scorer = score.NewScorer(validate.NewAuthorityClassifier(cfg)) }
}

// WithHistory records every successful analysis in s
func WithHistory(s history.Store) Option {
	return func(p *Pipeline) { p.history = s }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline around an explicitly constructed invoker
func New(normalizer *media.Normalizer, invoker Invoker, opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizer: normalizer,
		invoker:    invoker,
		scorer:     score.NewScorer(validate.NewAuthorityClassifier(nil)),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs one submission through the pipeline. Errors are classified
// *apperr.Error values; nothing is retried.
func (p *Pipeline) Analyze(ctx context.Context, sub Submission) (*Outcome, error) {
	start := p.now()

	// 1. Normalize; empty submissions stop here
	req, err := p.normalizer.Normalize(sub.Text, sub.File, sub.Mode)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindMedia {
			p.logger.Warn("media rejected", zap.Error(err))
		}
		return nil, err
	}
	logger := p.logger.With(
		zap.String("input_type", string(req.InputType)),
		zap.String("mode", string(req.Mode)),
	)

	// 2. Cache lookup
	key := cache.Key(req, prompt.SystemInstructionVersion)
	result, cached := p.lookup(ctx, key, logger)

	if !cached {
		// 3. Prefetch the page behind a bare URL
		if req.IsURL && p.fetcher != nil {
			excerpt, err := p.fetcher.Excerpt(ctx, req.PrimaryText)
			if err != nil {
				logger.Warn("page prefetch failed", zap.String("url", req.PrimaryText), zap.Error(err))
			} else {
				req.PageExcerpt = excerpt
			}
		}

		// 4. Generate
		inv, err := p.invoker.Invoke(ctx, req)
		if err != nil {
			return nil, err
		}

		// 5. Extract
		result, err = extract.Extract(inv.Text).Unwrap()
		if err != nil {
			logger.Warn("extraction failed", zap.Error(err), zap.Int("raw_bytes", len(inv.Text)))
			return nil, err
		}
		p.enrich(result, inv)

		p.store(ctx, key, result, logger)
	}

	out := &Outcome{Result: result, Cached: cached}

	// 6. Strict invariants are warnings only
	out.Warnings = extract.CheckInvariants(result)
	for _, v := range out.Warnings {
		logger.Warn("contract violation", zap.String("rule", string(v.Rule)), zap.String("detail", v.String()))
	}

	// 7. Evidence links
	if p.links != nil {
		out.Links = p.links.Check(ctx, result)
		out.LinkProblems = validate.Problems(out.Links)
		for _, problem := range out.LinkProblems {
			logger.Info("evidence link problem", zap.String("detail", problem))
		}
	}

	// 8. Evidence support summary; informational only
	out.Support = p.scorer.Calculate(result, out.Links)

	// 9. History
	if p.history != nil {
		entry := history.NewEntry(req.Label, result, p.now())
		if err := p.history.Add(ctx, entry); err != nil {
			logger.Warn("history update failed", zap.Error(err))
		} else {
			out.HistoryID = entry.ID
		}
	}

	out.Duration = p.now().Sub(start)
	logger.Info("analysis complete",
		zap.String("verdict", string(result.OverallVerdict.Normalize())),
		zap.Int("claims", len(result.Claims)),
		zap.Int("support_index", out.Support.Index),
		zap.Bool("cached", cached),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}

// Analyzer adapts the pipeline to batch processing in the given mode
func (p *Pipeline) Analyzer(mode model.Mode) worker.Analyzer {
	return worker.AnalyzerFunc(func(ctx context.Context, input string) (*model.AnalysisResult, error) {
		out, err := p.Analyze(ctx, Submission{Text: input, Mode: mode})
		if err != nil {
			return nil, err
		}
		return out.Result, nil
	})
}

// enrich fills metadata the service reported outside the JSON body. Values
// the model wrote itself are kept.
func (p *Pipeline) enrich(r *model.AnalysisResult, inv *llm.Invocation) {
	if r.Meta.Model == "" {
		r.Meta.Model = inv.Model
	}
	if r.Meta.TimestampUTC == "" {
		r.Meta.TimestampUTC = p.now().UTC().Format(time.RFC3339)
	}
	if len(r.Meta.SearchQueries) == 0 && len(inv.SearchQueries) > 0 {
		r.Meta.SearchQueries = inv.SearchQueries
	}
	if len(inv.Sources) > 0 {
		r.GroundingSources = inv.Sources
	}
}

func (p *Pipeline) lookup(ctx context.Context, key string, logger *zap.Logger) (*model.AnalysisResult, bool) {
	if p.cache == nil {
		return nil, false
	}
	data, ok := p.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var r model.AnalysisResult
	if err := json.Unmarshal(data, &r); err != nil {
		logger.Warn("discarding unreadable cache entry", zap.Error(err))
		_ = p.cache.Delete(ctx, key)
		return nil, false
	}
	logger.Debug("cache hit", zap.String("key", key))
	return &r, true
}

func (p *Pipeline) store(ctx context.Context, key string, r *model.AnalysisResult, logger *zap.Logger) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		logger.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := p.cache.Set(ctx, key, data, p.cacheTTL); err != nil {
		logger.Warn("cache write failed", zap.Error(err))
	}
}
