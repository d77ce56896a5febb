package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/prompt"
)

const geminiGroundedResponse = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "Here you go:\n{\"claims\":[],\"overall_verdict\":\"unknown\"}"}]},
    "finishReason": "STOP",
    "groundingMetadata": {
      "webSearchQueries": ["is the moon made of cheese"],
      "groundingChunks": [
        {"web": {"uri": "https://example.org/moon", "title": "example.org"}},
        {"web": {"uri": "https://example.org/moon", "title": "example.org"}},
        {"web": {"uri": "https://science.example/rocks", "title": "science.example"}}
      ]
    }
  }],
  "usageMetadata": {"totalTokenCount": 42},
  "modelVersion": "gemini-2.5-flash"
}`

func newGeminiTestProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewGeminiProvider(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestGeminiProvider_Generate_Success(t *testing.T) {
	provider := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing API key header")
		}

		body, _ := io.ReadAll(r.Body)
		var req map[string]interface{}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, ok := req["systemInstruction"]; !ok {
			t.Error("system instruction not sent")
		}
		if !strings.Contains(string(body), "googleSearch") {
			t.Error("search tool not enabled")
		}
		if strings.Contains(string(body), "responseSchema") {
			t.Error("response schema must not be combined with search")
		}
		if !strings.Contains(string(body), "inlineData") {
			t.Error("image part not sent inline")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiGroundedResponse))
	})

	resp, err := provider.Generate(context.Background(), GenerateRequest{
		Model:             "gemini-2.5-flash",
		SystemInstruction: "contract",
		Parts:             []prompt.Part{prompt.TextPart("check"), prompt.BlobPart([]byte("png"), "image/png")},
		Search:            true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(resp.Text, `"overall_verdict":"unknown"`) {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if len(resp.Sources) != 2 {
		t.Errorf("expected 2 de-duplicated sources, got %+v", resp.Sources)
	}
	if len(resp.SearchQueries) != 1 {
		t.Errorf("unexpected queries %+v", resp.SearchQueries)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d", resp.TokensUsed)
	}
}

func TestGeminiProvider_Generate_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperr.Kind
	}{
		{"bad key", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, apperr.KindAuth},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`, apperr.KindQuota},
		{"model", http.StatusNotFound, `{"error":{"code":404,"message":"models/gemini-9 is not found","status":"NOT_FOUND"}}`, apperr.KindNotFound},
		{"denied", http.StatusForbidden, `{"error":{"code":403,"message":"Permission denied","status":"PERMISSION_DENIED"}}`, apperr.KindAuth},
		{"server", http.StatusInternalServerError, `{"error":{"code":500,"message":"An internal error has occurred","status":"INTERNAL"}}`, apperr.KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := provider.Generate(context.Background(), GenerateRequest{Model: "gemini-2.5-flash", Parts: []prompt.Part{prompt.TextPart("x")}})
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("kind = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestGeminiProvider_Generate_SafetyBlock(t *testing.T) {
	bodies := []string{
		`{"promptFeedback":{"blockReason":"SAFETY"}}`,
		`{"candidates":[{"content":{"role":"model","parts":[]},"finishReason":"SAFETY"}]}`,
	}

	for _, body := range bodies {
		provider := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})

		_, err := provider.Generate(context.Background(), GenerateRequest{Model: "gemini-2.5-flash", Parts: []prompt.Part{prompt.TextPart("x")}})
		if apperr.KindOf(err) != apperr.KindSafety {
			t.Errorf("body %s: expected safety error, got %v", body, err)
		}
	}
}

func TestGeminiProvider_Generate_NoCandidates(t *testing.T) {
	provider := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	resp, err := provider.Generate(context.Background(), GenerateRequest{Model: "gemini-2.5-flash", Parts: []prompt.Part{prompt.TextPart("x")}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty text, got %q", resp.Text)
	}
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), Config{})
	if apperr.KindOf(err) != apperr.KindAuth {
		t.Errorf("expected auth error, got %v", err)
	}
}
