package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/prompt"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models.
// Chat completions have no search tool, so the model answers from its own
// knowledge and the contract's "unknown without evidence" rule carries more weight.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, apperr.New(apperr.KindAuth, "llm.openai", errors.New("OpenAI API key is required (set OPENAI_API_KEY)"))
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// SupportsSearch is false: chat completions ignore GenerateRequest.Search
func (p *OpenAIProvider) SupportsSearch() bool {
	return false
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Generate runs a chat completion with the system instruction and a single
// multi-part user message
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemInstruction,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: openAIParts(req.Parts),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	out := &GenerateResponse{
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}
	if out.Model == "" {
		out.Model = modelName
	}

	if len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, apperr.New(apperr.KindSafety, "llm.openai", errors.New("response removed by content filter"))
	}
	if choice.Message.Refusal != "" && strings.TrimSpace(choice.Message.Content) == "" {
		return nil, apperr.Newf(apperr.KindSafety, "llm.openai", "model refused: %s", choice.Message.Refusal)
	}

	out.Text = strings.TrimSpace(choice.Message.Content)
	return out, nil
}

func openAIParts(parts []prompt.Part) []openai.ChatMessagePart {
	out := make([]openai.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		if part.IsBlob() {
			out = append(out, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURI(part.MimeType, part.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
			continue
		}
		out = append(out, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: part.Text,
		})
	}
	return out
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func classifyOpenAIError(err error) error {
	const op = "llm.openai"

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperr.New(classifyStatus(apiErr.HTTPStatusCode, apiErr.Message), op, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperr.New(classifyStatus(reqErr.HTTPStatusCode, string(reqErr.Body)), op, err)
	}

	return classify(op, err)
}
