package extract

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/apperr"
)

const sampleResult = `{
  "input_summary": {"input_type": "text", "raw_excerpt": "The Great Wall is visible from space", "detected_claims_count": 1},
  "claims": [
    {
      "id": "c1",
      "claim_text": "The Great Wall of China is visible from space with the naked eye",
      "claim_type": "explicit",
      "entities": ["Great Wall of China"],
      "evidence": [
        {
          "source_title": "Can you see the Great Wall from space?",
          "source_url": "https://www.nasa.gov/great-wall",
          "source_type": "official",
          "quote": "The Great Wall is difficult or impossible to see with the naked eye from low Earth orbit.",
          "confidence_in_source": 0.9,
          "retrieved_at": "2024-05-01T10:00:00Z"
        }
      ],
      "verdict": "false",
      "verdict_confidence": 0.85,
      "reasoning": "Astronauts report the wall is too narrow to see unaided.",
      "suggested_search_queries": ["great wall visible from space astronaut"],
      "provenance": ["web_search"]
    }
  ],
  "overall_verdict": "false",
  "overall_confidence": 0.85,
  "explainable_summary": "The claim is a popular myth. Official sources say it is not visible.",
  "suggested_actions": ["Share the NASA explanation"],
  "safety_warnings": [],
  "meta": {"search_queries": ["great wall space"], "timestamp_utc": "2024-05-01T10:00:00Z", "model": "gemini-2.5-flash"}
}`

func TestLocate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Sure! Here it is: {\"a\":1} Hope that helps.", `{"a":1}`, true},
		{"nested", `x {"a":{"b":[{"c":1}]}} y`, `{"a":{"b":[{"c":1}]}}`, true},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`, true},
		{"escaped quote in string", `{"a":"say \"}\""}`, `{"a":"say \"}\""}`, true},
		{"no braces", "I could not analyze this.", "", false},
		{"only open", `{"a":1`, "", false},
		{"only close", `"a":1}`, "", false},
		{"reversed", `} and {`, "", false},
		{"unbalanced open", `{"a":{"b":1}`, "", false},
		{"trailing brace in prose", `{"a":1} :}`, "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Locate(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Locate(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtract_Success(t *testing.T) {
	out := Extract(sampleResult)
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err)
	}

	r := out.Result
	if len(r.Claims) != 1 || r.Claims[0].ID != "c1" {
		t.Fatalf("unexpected claims %+v", r.Claims)
	}
	if r.Claims[0].Evidence[0].SourceURL != "https://www.nasa.gov/great-wall" {
		t.Errorf("unexpected evidence %+v", r.Claims[0].Evidence)
	}
	if r.OverallVerdict != "false" || r.OverallConfidence != 0.85 {
		t.Errorf("unexpected overall verdict %s %.2f", r.OverallVerdict, r.OverallConfidence)
	}
}

func TestExtract_FenceScenario(t *testing.T) {
	raw := "Sure! ```json\n{\"claims\":[],\"overall_verdict\":\"unknown\", \"overall_confidence\": 0.2}\n```"

	out := Extract(raw)
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if out.Result.OverallVerdict != "unknown" {
		t.Errorf("OverallVerdict = %s", out.Result.OverallVerdict)
	}
	if out.Result.Claims == nil || len(out.Result.Claims) != 0 {
		t.Errorf("expected explicit empty claims, got %#v", out.Result.Claims)
	}
}

func TestExtract_RecoversObjectFromArbitraryText(t *testing.T) {
	prefixes := []string{"", "Here is the analysis:\n", "```json\n", "Note: results may vary.\n\n```\n"}
	suffixes := []string{"", "\n```", "\nLet me know if you need anything else.", "\n```\nSources were checked."}

	want := Extract(sampleResult).Result
	for _, p := range prefixes {
		for _, s := range suffixes {
			out := Extract(p + sampleResult + s)
			if !out.OK() {
				t.Fatalf("prefix %q suffix %q: %v", p, s, out.Err)
			}
			if !reflect.DeepEqual(out.Result, want) {
				t.Errorf("prefix %q suffix %q: result differs", p, s)
			}
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	inputs := []string{
		sampleResult,
		`{"claims":[],"overall_verdict":"unknown"}`,
		`{"claims":[{"id":"x","verdict":"weird_value"}],"overall_verdict":"TRUE","illegible_text":true}`,
	}

	for _, raw := range inputs {
		first := Extract(raw)
		if !first.OK() {
			t.Fatalf("first extraction failed: %v", first.Err)
		}

		pretty, err := json.MarshalIndent(first.Result, "", "  ")
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		second := Extract(string(pretty))
		if !second.OK() {
			t.Fatalf("second extraction failed: %v", second.Err)
		}
		if !reflect.DeepEqual(first.Result, second.Result) {
			t.Errorf("extraction is not idempotent:\nfirst  %+v\nsecond %+v", first.Result, second.Result)
		}
	}
}

func TestExtract_NoJSON(t *testing.T) {
	for _, raw := range []string{"", "I'm sorry, I can't help with that.", `{"claims": [`, `"claims": []}`, "}{"} {
		out := Extract(raw)
		if out.OK() {
			t.Fatalf("Extract(%q) unexpectedly succeeded", raw)
		}
		if out.Err.Kind != apperr.KindNoJSON {
			t.Errorf("Extract(%q) kind = %v, want no_json_found", raw, out.Err.Kind)
		}
		if out.Err.RawText != raw {
			t.Errorf("raw text not preserved: %q", out.Err.RawText)
		}
	}
}

func TestExtract_MalformedJSON(t *testing.T) {
	raw := "Result: {\"claims\": [, \"overall_verdict\": unknown}"

	out := Extract(raw)
	if out.OK() || out.Err.Kind != apperr.KindMalformedJSON {
		t.Fatalf("expected malformed JSON, got %+v", out)
	}
	if out.Err.RawText != raw {
		t.Errorf("raw text not preserved")
	}
	if out.Err.Cause == nil {
		t.Error("expected parse error as cause")
	}
}

func TestExtract_SchemaViolation(t *testing.T) {
	tests := []struct {
		raw     string
		mention string
	}{
		{`{"overall_verdict":"true"}`, "claims"},
		{`{"claims":[]}`, "overall_verdict"},
		{`{"claims":null,"overall_verdict":"true"}`, "claims"},
		{`{}`, "claims, overall_verdict"},
		{`{"claims":"none","overall_verdict":"true"}`, "wrong type"},
	}

	for _, tt := range tests {
		out := Extract(tt.raw)
		if out.OK() || out.Err.Kind != apperr.KindSchemaViolation {
			t.Errorf("Extract(%s): expected schema violation, got %+v", tt.raw, out)
			continue
		}
		if !strings.Contains(out.Err.Error(), tt.mention) {
			t.Errorf("Extract(%s): error %q should mention %q", tt.raw, out.Err.Error(), tt.mention)
		}
	}
}

func TestOutcome_Unwrap(t *testing.T) {
	raw := "no json here"
	_, err := Extract(raw).Unwrap()

	if apperr.KindOf(err) != apperr.KindNoJSON {
		t.Errorf("KindOf = %v", apperr.KindOf(err))
	}
	if apperr.RawText(err) != raw {
		t.Errorf("RawText = %q", apperr.RawText(err))
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Error("expected ExtractionError in chain")
	}

	result, err := Extract(sampleResult).Unwrap()
	if err != nil || result == nil {
		t.Errorf("Unwrap on success = %v, %v", result, err)
	}
}
