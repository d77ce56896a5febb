package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/history"
	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/logging"
	"github.com/ppiankov/factlens/internal/media"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/validate"
	"github.com/ppiankov/factlens/internal/worker"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// envKeys are the config keys that can be set through FACTLENS_* variables.
// Viper only consults the environment for keys it already knows.
var envKeys = []string{
	"llm.provider",
	"llm.api_key",
	"llm.base_url",
	"llm.standard_model",
	"llm.deep_model",
	"llm.timeout",
	"fetch.enabled",
	"fetch.http_proxy",
	"fetch.https_proxy",
	"fetch.no_proxy",
	"links.enabled",
	"cache.enabled",
	"cache.backend",
	"cache.dir",
	"cache.redis_addr",
	"history.backend",
	"history.path",
	"server.host",
	"server.port",
	"output.dir",
}

// providerKeyVars lists the conventional API key variables per provider
var providerKeyVars = map[string][]string{
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
}

// loadConfig merges defaults, the config file and the environment
func loadConfig(v *viper.Viper) (*model.Config, error) {
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = apiKeyFromEnv(cfg.LLM.Provider)
	}
	return cfg, nil
}

// apiKeyFromEnv returns the first non-empty conventional key variable for provider
func apiKeyFromEnv(provider string) string {
	name := strings.ToLower(strings.TrimSpace(provider))
	switch name {
	case "", "google":
		name = "gemini"
	case "claude":
		name = "anthropic"
	}
	for _, env := range providerKeyVars[name] {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return ""
}

// app holds everything a command needs to run analyses
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	history  history.Store
	cache    cache.Cache
}

// newApp wires the pipeline described by cfg
func newApp(ctx context.Context, cfg *model.Config) (*app, error) {
	logger, err := logging.New(cfg.Output.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, err
	}
	invoker := llm.NewInvoker(provider, llm.ModelsFromConfig(cfg.LLM),
		llm.WithLimiter(worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)),
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
		llm.WithLogger(logger),
	)

	a := &app{cfg: cfg, logger: logger}
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithAuthority(&cfg.Authority),
	}

	if cfg.Fetch.Enabled {
		opts = append(opts, pipeline.WithFetcher(pipeline.NewFetcher(cfg.Fetch)))
	}

	a.cache, err = cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if a.cache != nil {
		opts = append(opts, pipeline.WithCache(a.cache, cfg.Cache.TTL))
	}

	if cfg.Links.Enabled {
		opts = append(opts, pipeline.WithLinkChecker(validate.NewLinkChecker(cfg.Links, &cfg.Authority, cfg.Fetch)))
	}

	a.history, err = history.Open(cfg.History)
	if err != nil {
		// History is bookkeeping; analysis still works without it
		logger.Warn("history unavailable", zap.Error(err))
	} else {
		opts = append(opts, pipeline.WithHistory(a.history))
	}

	a.pipeline = pipeline.New(media.NewNormalizer(cfg.Media), invoker, opts...)
	return a, nil
}

// Close releases the history store and any cache connection
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("close history", zap.Error(err))
		}
	}
	if c, ok := a.cache.(io.Closer); ok {
		_ = c.Close()
	}
	_ = a.logger.Sync()
}
