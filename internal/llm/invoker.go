package llm

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/prompt"
	"github.com/ppiankov/factlens/internal/worker"
	"go.uber.org/zap"
)

// Invocation is the raw outcome of one successful generation call
type Invocation struct {
	Text          string
	Model         string
	Sources       []model.GroundingSource
	SearchQueries []string
	TokensUsed    int
	Duration      time.Duration
}

// Invoker sends analysis requests to a provider under the fixed system
// instruction with web search enabled. It never retries.
type Invoker struct {
	provider  Provider
	models    ModelSet
	limiter   *worker.Limiter
	timeout   time.Duration
	maxTokens int
	logger    *zap.Logger
}

// InvokerOption configures an Invoker
type InvokerOption func(*Invoker)

// WithLimiter rate limits calls per model
func WithLimiter(l *worker.Limiter) InvokerOption {
	return func(i *Invoker) { i.limiter = l }
}

// WithTimeout bounds each generation call; zero disables the bound
func WithTimeout(d time.Duration) InvokerOption {
	return func(i *Invoker) { i.timeout = d }
}

// WithMaxTokens limits the response length
func WithMaxTokens(n int) InvokerOption {
	return func(i *Invoker) { i.maxTokens = n }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) InvokerOption {
	return func(i *Invoker) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInvoker creates an invoker around an explicitly constructed provider
func NewInvoker(provider Provider, models ModelSet, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		provider: provider,
		models:   models,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	if !SupportsSearch(provider) {
		inv.logger.Warn("provider has no web search; verdicts rest on model knowledge alone",
			zap.String("provider", provider.Name()))
	}
	return inv
}

// Models returns the configured model variants
func (i *Invoker) Models() ModelSet {
	return i.models
}

// Invoke builds the prompt for req, selects the model for its mode and runs
// one generation call. Fails with KindEmptyResponse if no text comes back.
func (i *Invoker) Invoke(ctx context.Context, req *model.AnalysisRequest) (*Invocation, error) {
	if req == nil || !req.HasContent() {
		return nil, apperr.New(apperr.KindInput, "llm.invoke", errors.New("empty request"))
	}

	modelName := i.models.ForMode(req.Mode)
	logger := i.logger.With(
		zap.String("provider", i.provider.Name()),
		zap.String("model", modelName),
		zap.String("mode", string(req.Mode)),
	)

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	if i.limiter != nil {
		if err := i.limiter.Wait(ctx, modelName); err != nil {
			if ctx.Err() != nil {
				return nil, i.fail(logger, timeoutOr(ctx, "llm.invoke", err))
			}
			// rate.Limiter refuses up front when the wait would outlast the deadline
			return nil, i.fail(logger, apperr.New(apperr.KindQuota, "llm.invoke", err))
		}
	}

	start := time.Now()
	resp, err := i.provider.Generate(ctx, GenerateRequest{
		Model:             modelName,
		SystemInstruction: prompt.SystemInstruction,
		Parts:             prompt.Build(req),
		Search:            true,
		MaxTokens:         i.maxTokens,
	})
	elapsed := time.Since(start)

	if err != nil {
		return nil, i.fail(logger, timeoutOr(ctx, "llm.invoke", err))
	}

	if resp == nil || resp.Text == "" {
		return nil, i.fail(logger, apperr.New(apperr.KindEmptyResponse, "llm.invoke", errors.New("service returned no text")))
	}

	logger.Info("generation complete",
		zap.Duration("duration", elapsed),
		zap.Int("tokens", resp.TokensUsed),
		zap.Int("sources", len(resp.Sources)),
	)

	used := resp.Model
	if used == "" {
		used = modelName
	}

	return &Invocation{
		Text:          resp.Text,
		Model:         used,
		Sources:       resp.Sources,
		SearchQueries: resp.SearchQueries,
		TokensUsed:    resp.TokensUsed,
		Duration:      elapsed,
	}, nil
}

func (i *Invoker) fail(logger *zap.Logger, err error) error {
	logger.Warn("generation failed",
		zap.String("kind", apperr.KindOf(err).String()),
		zap.Error(err),
	)
	return err
}

// timeoutOr classifies err, reporting KindTimeout whenever ctx's deadline
// has passed regardless of how the provider surfaced it
func timeoutOr(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && apperr.KindOf(err) != apperr.KindTimeout {
		return apperr.New(apperr.KindTimeout, op, err)
	}
	return classify(op, err)
}
