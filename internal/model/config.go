package model

import "time"

// Config holds the complete factlens configuration
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Media     MediaConfig     `yaml:"media" mapstructure:"media"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Links     LinksConfig     `yaml:"links" mapstructure:"links"`
	Authority AuthorityConfig `yaml:"authority" mapstructure:"authority"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// LLMConfig selects and tunes the generation service
type LLMConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic
	APIKey            string        `yaml:"-" mapstructure:"api_key"`         // Never written to disk
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	StandardModel     string        `yaml:"standard_model" mapstructure:"standard_model"`
	DeepModel         string        `yaml:"deep_model" mapstructure:"deep_model"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// MediaConfig bounds file normalization
type MediaConfig struct {
	MaxPDFPages   int   `yaml:"max_pdf_pages" mapstructure:"max_pdf_pages"`
	MaxImageBytes int64 `yaml:"max_image_bytes" mapstructure:"max_image_bytes"`
	MaxPDFBytes   int64 `yaml:"max_pdf_bytes" mapstructure:"max_pdf_bytes"`
}

// FetchConfig controls page prefetch for bare URL input
type FetchConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxExcerpt    int           `yaml:"max_excerpt" mapstructure:"max_excerpt"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LinksConfig controls the evidence link check
type LinksConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Workers int           `yaml:"workers" mapstructure:"workers"`
}

// AuthorityConfig configures source authority classification
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
}

// PathPattern assigns a tier to URLs whose path matches a regular expression
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// CacheConfig configures the result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisAddr string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
}

// HistoryConfig configures the recent-results list
type HistoryConfig struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // file, sqlite
	Path     string `yaml:"path" mapstructure:"path"`
	Capacity int    `yaml:"capacity" mapstructure:"capacity"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// OutputConfig controls artifact generation
type OutputConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Markdown bool   `yaml:"markdown" mapstructure:"markdown"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the standard factlens configuration
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "gemini",
			StandardModel:     "gemini-2.5-flash",
			DeepModel:         "gemini-2.5-pro",
			Timeout:           90 * time.Second,
			MaxTokens:         8192,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Media: MediaConfig{
			MaxPDFPages:   10,
			MaxImageBytes: 20 << 20,
			MaxPDFBytes:   50 << 20,
		},
		Fetch: FetchConfig{
			Enabled:       false,
			Timeout:       15 * time.Second,
			UserAgent:     "factlens/0.1 (+https://github.com/ppiankov/factlens)",
			MaxBodyBytes:  2_000_000,
			MaxExcerpt:    4000,
			RespectRobots: true,
		},
		Links: LinksConfig{
			Enabled: false,
			Timeout: 10 * time.Second,
			Workers: 8,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"gov", "gov.uk", "europa.eu", "who.int", "un.org",
				"nih.gov", "nature.com", "science.org", "doi.org", "arxiv.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "reuters.com", "apnews.com", "bbc.co.uk", "bbc.com",
				"snopes.com", "politifact.com", "factcheck.org", "fullfact.org",
			},
			PathPatterns: []PathPattern{
				{Pattern: `^/(doi|abs|pdf)/`, Tier: "primary"},
				{Pattern: `/fact-?check`, Tier: "secondary"},
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			Dir:     ".factlens/cache",
			TTL:     24 * time.Hour,
		},
		History: HistoryConfig{
			Backend:  "file",
			Path:     ".factlens/history.json",
			Capacity: HistoryCapacity,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}
