// Package prompt turns a normalized analysis request into the ordered parts
// sent to the generation service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// Part is one request part: either text or an inline binary blob
type Part struct {
	Text     string
	Data     []byte
	MimeType string
}

// IsBlob reports whether the part carries inline binary data
func (p Part) IsBlob() bool {
	return len(p.Data) > 0
}

// TextPart creates a text part
func TextPart(text string) Part {
	return Part{Text: text}
}

// BlobPart creates an inline binary part
func BlobPart(data []byte, mimeType string) Part {
	return Part{Data: data, MimeType: mimeType}
}

const (
	deepDirective = "DEEP ANALYSIS MODE: Take extra care. Run several independent searches per claim, " +
		"cross-check sources against each other, look for the original context of quotes and images, " +
		"and explain any disagreement between sources in the reasoning."

	urlDirective = "The input is a URL. Search for this page and for reporting about it, identify the " +
		"main factual claims it makes, and verify them against independent sources. Record the URL " +
		"itself in meta.search_queries if you searched for it."

	excerptHeader = "Page excerpt (fetched locally, may be incomplete):"
)

// Build produces the ordered request parts for req.
//
// With an image the instruction part comes first, then the image, then an
// optional context part carrying the primary text. Without an image the result
// is always exactly one text part.
func Build(req *model.AnalysisRequest) []Part {
	mode := req.Mode
	if mode == "" {
		mode = model.ModeStandard
	}

	if req.Media != nil && len(req.Media.Data) > 0 {
		parts := []Part{
			TextPart(imageInstruction(mode)),
			BlobPart(req.Media.Data, req.Media.MimeType),
		}
		if text := strings.TrimSpace(req.PrimaryText); text != "" {
			parts = append(parts, TextPart("Additional context from the user:\n"+text))
		}
		return parts
	}

	return []Part{TextPart(textInstruction(req, mode))}
}

func imageInstruction(mode model.Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis mode: %s.\n", mode)
	if mode == model.ModeDeep {
		b.WriteString(deepDirective)
		b.WriteString("\n")
	}
	b.WriteString("Analyze the attached image. Read any visible text, describe what is shown in " +
		"meta.vision_note, extract the factual claims it makes or implies, and check whether the " +
		"image appears manipulated, AI-generated or used out of context.")
	return b.String()
}

func textInstruction(req *model.AnalysisRequest, mode model.Mode) string {
	var b strings.Builder
	if mode == model.ModeDeep {
		b.WriteString(deepDirective)
		b.WriteString("\n\n")
	}

	if req.IsURL {
		b.WriteString(urlDirective)
		b.WriteString("\n\nURL: ")
		b.WriteString(strings.TrimSpace(req.PrimaryText))
		if excerpt := strings.TrimSpace(req.PageExcerpt); excerpt != "" {
			b.WriteString("\n\n")
			b.WriteString(excerptHeader)
			b.WriteString("\n")
			b.WriteString(excerpt)
		}
		return b.String()
	}

	label := "text"
	if req.InputType == model.InputPDF {
		label = "document text"
	}
	fmt.Fprintf(&b, "Fact-check the following %s:\n\n%s", label, strings.TrimSpace(req.PrimaryText))
	return b.String()
}
