package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestWriteJSON_PrettyPrinted(t *testing.T) {
	r := sampleResult(1)
	r.Claims[0].Reasoning = "Uses <b> & > characters"

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "\n  \"input_summary\": {") {
		t.Errorf("expected two-space indentation, got:\n%s", out[:min(200, len(out))])
	}
	if !strings.Contains(out, "Uses <b> & > characters") {
		t.Error("HTML characters should not be escaped")
	}

	var back model.AnalysisResult
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.OverallVerdict != r.OverallVerdict || len(back.Claims) != 1 {
		t.Errorf("unexpected round trip: %+v", back)
	}
}

func TestMarkdown_Sections(t *testing.T) {
	r := sampleResult(2)
	r.Claims[1].Evidence = nil
	r.GroundingSources = []model.GroundingSource{{Title: "Search hit", URL: "https://news.example.com/a"}}

	out := Markdown(r)

	order := []string{
		"# Fact-Check Report",
		"**Overall verdict: MISLEADING**",
		"Confidence: 72% | Claims analyzed: 2",
		"## Executive Summary",
		"## Claim 1: FALSE (90% confidence)",
		"(<https://archive.example.org/0/0>)",
		"## Claim 2: FALSE (90% confidence)",
		"_No evidence cited._",
		"## Safety Warnings",
		"## Suggested Actions",
		"## Sources Consulted",
	}
	last := -1
	for _, want := range order {
		idx := strings.Index(out, want)
		if idx < 0 {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
		if idx < last {
			t.Errorf("%q is out of order", want)
		}
		last = idx
	}
}

func TestMarkdown_TruncatesQuotes(t *testing.T) {
	r := &model.AnalysisResult{Claims: []model.Claim{{
		ClaimText: "c",
		Evidence:  []model.Evidence{{SourceTitle: "t", SourceURL: "https://e.org", Quote: strings.Repeat("x", 150)}},
	}}}

	out := Markdown(r)
	if !strings.Contains(out, strings.Repeat("x", MaxQuoteChars)+"...") {
		t.Error("expected truncated quote")
	}
	if strings.Contains(out, strings.Repeat("x", MaxQuoteChars+1)) {
		t.Error("quote was not truncated")
	}
}

func TestHTML(t *testing.T) {
	r := sampleResult(1)
	r.Claims[0].ClaimText = "Contains *stars* and _underscores_ and <script>"

	out, err := HTML(r)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(out)

	if !strings.Contains(html, "<h1>Fact-Check Report</h1>") {
		t.Error("missing title heading")
	}
	if !strings.Contains(html, `href="https://archive.example.org/0/0"`) {
		t.Error("missing evidence link")
	}
	if strings.Contains(html, "<script>") {
		t.Error("raw HTML from the result must not pass through")
	}
	if strings.Contains(html, "<em>stars</em>") {
		t.Error("markdown in result text must be escaped")
	}
}
