package media

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ppiankov/factlens/internal/apperr"
)

// ErrEmptyContent is returned when a document yields no extractable text,
// typically an image-only scan
var ErrEmptyContent = fmt.Errorf("%w (the PDF may be a scanned image)", apperr.ErrNoText)

// PDFSource is the only view of a PDF the normalizer depends on
type PDFSource interface {
	NumPage() int
	// PageText returns the plain text of page i (1-based)
	PageText(i int) (string, error)
}

// OpenFunc opens raw PDF bytes as a PDFSource
type OpenFunc func(data []byte) (PDFSource, error)

type ledongthucSource struct {
	r *pdf.Reader
}

// OpenPDF opens data with github.com/ledongthuc/pdf
func OpenPDF(data []byte) (PDFSource, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	return &ledongthucSource{r: r}, nil
}

func (s *ledongthucSource) NumPage() int {
	return s.r.NumPage()
}

func (s *ledongthucSource) PageText(i int) (string, error) {
	page := s.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", i, err)
	}
	return text, nil
}

// ExtractText concatenates the text of at most maxPages pages, each preceded
// by a "[Page N]" marker. When the document is longer a truncation notice is
// appended. Returns ErrEmptyContent if no page has any text.
func ExtractText(src PDFSource, maxPages int) (string, error) {
	total := src.NumPage()
	if total <= 0 {
		return "", ErrEmptyContent
	}

	limit := total
	if maxPages > 0 && limit > maxPages {
		limit = maxPages
	}

	var buf strings.Builder
	hasText := false
	for i := 1; i <= limit; i++ {
		text, err := src.PageText(i)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			hasText = true
		}

		if i > 1 {
			buf.WriteString("\n\n")
		}
		fmt.Fprintf(&buf, "[Page %d]\n%s", i, text)
	}

	if !hasText {
		return "", ErrEmptyContent
	}

	if total > limit {
		fmt.Fprintf(&buf, "\n\n%s", TruncationNotice(limit, total))
	}

	return buf.String(), nil
}

// TruncationNotice is the marker appended when pages were skipped
func TruncationNotice(shown, total int) string {
	return fmt.Sprintf("[Truncated: showing first %d of %d pages]", shown, total)
}
