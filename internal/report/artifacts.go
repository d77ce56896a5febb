package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// WriteJSON writes the raw result, pretty-printed
func WriteJSON(w io.Writer, r *model.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// Markdown renders r as a Markdown document with the same section order as
// the paginated report
func Markdown(r *model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("# Fact-Check Report\n\n")
	if meta := metaLine(r); meta != "" {
		fmt.Fprintf(&b, "_%s_\n\n", escapeMarkdown(meta))
	}
	if excerpt := strings.TrimSpace(r.InputSummary.RawExcerpt); excerpt != "" {
		fmt.Fprintf(&b, "> %s\n\n", escapeMarkdown(oneParagraph(excerpt)))
	}

	fmt.Fprintf(&b, "**Overall verdict: %s**\n\n", r.OverallVerdict.Label())
	fmt.Fprintf(&b, "Confidence: %s | Claims analyzed: %d\n\n", percent(r.OverallConfidence), len(r.Claims))

	if summary := strings.TrimSpace(r.ExplainableSummary); summary != "" {
		fmt.Fprintf(&b, "## Executive Summary\n\n%s\n\n", escapeMarkdown(summary))
	}
	if r.IllegibleText {
		b.WriteString("_Note: text in the image could not be read reliably._\n\n")
	}

	for i, c := range r.Claims {
		fmt.Fprintf(&b, "## Claim %d: %s", i+1, c.Verdict.Label())
		if c.VerdictConfidence > 0 {
			fmt.Fprintf(&b, " (%s confidence)", percent(c.VerdictConfidence))
		}
		b.WriteString("\n\n")
		if text := strings.TrimSpace(c.ClaimText); text != "" {
			fmt.Fprintf(&b, "_\"%s\"_\n\n", escapeMarkdown(oneParagraph(text)))
		}
		if reasoning := strings.TrimSpace(c.Reasoning); reasoning != "" {
			fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(reasoning))
		}
		if len(c.Evidence) == 0 {
			b.WriteString("_No evidence cited._\n\n")
			continue
		}
		for n, ev := range c.Evidence {
			label := escapeMarkdown(evidenceLabel(n+1, &ev))
			if ev.SourceURL != "" {
				fmt.Fprintf(&b, "- [%s](<%s>)\n", label, ev.SourceURL)
			} else {
				fmt.Fprintf(&b, "- %s\n", label)
			}
			if q := truncateQuote(ev.Quote); q != "" {
				fmt.Fprintf(&b, "  > \"%s\"\n", escapeMarkdown(oneParagraph(q)))
			}
		}
		b.WriteString("\n")
	}

	if len(r.SafetyWarnings) > 0 {
		b.WriteString("## Safety Warnings\n\n")
		for _, w := range r.SafetyWarnings {
			category := strings.ToUpper(strings.ReplaceAll(string(w.Category), "_", " "))
			fmt.Fprintf(&b, "- **%s**: %s", category, escapeMarkdown(oneParagraph(w.Message)))
			if action := strings.TrimSpace(w.RecommendedAction); action != "" {
				fmt.Fprintf(&b, " _Recommended action: %s_", escapeMarkdown(oneParagraph(action)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.SuggestedActions) > 0 {
		b.WriteString("## Suggested Actions\n\n")
		for _, a := range r.SuggestedActions {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(oneParagraph(a)))
		}
		b.WriteString("\n")
	}

	if len(r.GroundingSources) > 0 {
		b.WriteString("## Sources Consulted\n\n")
		for _, s := range r.GroundingSources {
			title := s.Title
			if title == "" {
				title = s.URL
			}
			fmt.Fprintf(&b, "- [%s](<%s>)\n", escapeMarkdown(title), s.URL)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the Markdown report to an HTML fragment
func HTML(r *model.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"`", "\\`",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func oneParagraph(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
