package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/prompt"
	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini models
// with Google Search grounding
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, apperr.New(apperr.KindAuth, "llm.gemini", errors.New("Gemini API key is required (set GEMINI_API_KEY)"))
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the configured key can reach the service
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	page, err := p.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	if err != nil {
		return false
	}
	return len(page.Items) > 0
}

// Generate calls generateContent with the system instruction, the prompt
// parts and, when requested, the Google Search tool
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	if req.Search {
		// Response schemas are unavailable together with the search tool
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	contents := []*genai.Content{genai.NewContentFromParts(geminiParts(req.Parts), genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, apperr.Newf(apperr.KindSafety, "llm.gemini", "prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	out := &GenerateResponse{Model: req.Model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	if len(resp.Candidates) == 0 {
		return out, nil
	}

	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return nil, apperr.Newf(apperr.KindSafety, "llm.gemini", "response blocked: %s", cand.FinishReason)
	}

	out.Text = strings.TrimSpace(resp.Text())
	out.Sources, out.SearchQueries = groundingSources(cand.GroundingMetadata)

	return out, nil
}

func geminiParts(parts []prompt.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.IsBlob() {
			out = append(out, genai.NewPartFromBytes(part.Data, part.MimeType))
			continue
		}
		out = append(out, genai.NewPartFromText(part.Text))
	}
	return out
}

func groundingSources(meta *genai.GroundingMetadata) ([]model.GroundingSource, []string) {
	if meta == nil {
		return nil, nil
	}

	var sources []model.GroundingSource
	seen := make(map[string]bool)
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		sources = append(sources, model.GroundingSource{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}

	return sources, meta.WebSearchQueries
}

func classifyGeminiError(err error) error {
	const op = "llm.gemini"

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(op, apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(op, *apiErrPtr, err)
	}

	return classify(op, err)
}

func classifyAPIError(op string, apiErr genai.APIError, err error) error {
	if kind, ok := classifyStatusName(apiErr.Status); ok {
		return apperr.New(kind, op, err)
	}
	return apperr.New(classifyStatus(apiErr.Code, apiErr.Message), op, err)
}
