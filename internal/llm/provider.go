// Package llm invokes a search-augmented generation service under the fixed
// analysis contract and classifies its failures.
package llm

import (
	"context"
	"time"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/prompt"
)

// Provider defines the interface for generation services
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate runs one generation call. Implementations return apperr
	// classified errors where the service response allows it.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Searcher is implemented by providers that may lack a web search tool
type Searcher interface {
	SupportsSearch() bool
}

// SupportsSearch reports whether p honors GenerateRequest.Search.
// Providers that do not implement Searcher are assumed to.
func SupportsSearch(p Provider) bool {
	if s, ok := p.(Searcher); ok {
		return s.SupportsSearch()
	}
	return true
}

// GenerateRequest contains the input for one generation call
type GenerateRequest struct {
	// Model is the provider-specific model name
	Model string

	// SystemInstruction is the fixed response contract
	SystemInstruction string

	// Parts are the ordered user parts (text and inline blobs)
	Parts []prompt.Part

	// Search enables the provider's web search tool. With search enabled no
	// provider enforces a response schema, so the output is free text.
	Search bool

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the raw output of a generation call
type GenerateResponse struct {
	// Text is the concatenated text output, unparsed
	Text string

	// Model is the model that generated the response
	Model string

	// Sources are web pages the service reported from its search tool
	Sources []model.GroundingSource

	// SearchQueries are the queries the search tool ran, when reported
	SearchQueries []string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic"
	Provider string

	// APIKey for the service
	APIKey string

	// BaseURL for custom endpoints and tests
	BaseURL string

	// MaxTokens for response generation
	MaxTokens int

	// Timeout bounds IsAvailable checks; generation calls are bounded by the Invoker
	Timeout time.Duration
}

// ModelSet maps analysis modes to model variants
type ModelSet struct {
	Standard string // Fast default variant
	Deep     string // Higher-capability variant
}

// ForMode returns the model for mode
func (m ModelSet) ForMode(mode model.Mode) string {
	if mode == model.ModeDeep && m.Deep != "" {
		return m.Deep
	}
	return m.Standard
}
