package report

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

// recordingCanvas captures the text drawn on each page
type recordingCanvas struct {
	fixedMeasurer
	pages [][]string
	links []string
}

func (c *recordingCanvas) AddPage() {
	c.pages = append(c.pages, nil)
}

func (c *recordingCanvas) Text(x, y float64, s string, st Style, col Color) {
	c.pages[len(c.pages)-1] = append(c.pages[len(c.pages)-1], s)
}

func (c *recordingCanvas) Line(x1, y1, x2, y2 float64, col Color) {}

func (c *recordingCanvas) Rect(x, y, w, h float64, fill Color) {}

func (c *recordingCanvas) Link(x, y, w, h float64, url string) {
	c.links = append(c.links, url)
}

func (c *recordingCanvas) Output(w io.Writer) error {
	return nil
}

func TestRender_StampsFooters(t *testing.T) {
	c := &recordingCanvas{}
	doc := Layout(sampleResult(model.MaxClaims), A4, c)
	Render(doc, c)

	n := doc.PageCount()
	if len(c.pages) != n {
		t.Fatalf("rendered %d pages, layout produced %d", len(c.pages), n)
	}
	for i, texts := range c.pages {
		last := texts[len(texts)-1]
		if want := FooterText(i+1, n); last != want {
			t.Errorf("page %d footer = %q, want %q", i+1, last, want)
		}
	}
	if len(c.links) != model.MaxClaims*3 {
		t.Errorf("expected %d links, got %d", model.MaxClaims*3, len(c.links))
	}
}

func TestRender_SinglePage(t *testing.T) {
	c := &recordingCanvas{}
	Render(Layout(&model.AnalysisResult{OverallVerdict: model.VerdictTrue}, A4, c), c)

	if len(c.pages) != 1 {
		t.Fatalf("expected one page, got %d", len(c.pages))
	}
	texts := c.pages[0]
	if texts[len(texts)-1] != "Page 1 of 1" {
		t.Errorf("footer = %q", texts[len(texts)-1])
	}
}

func TestPaginate_ByteIdentical(t *testing.T) {
	r := sampleResult(3)
	r.ExplainableSummary += " Non-Latin text: 東京 — “quoted” café."

	first, err := Paginate(r)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	second, err := Paginate(cloneResult(r))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	if !bytes.HasPrefix(first, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", first[:min(16, len(first))])
	}
	if !bytes.Equal(first, second) {
		t.Error("identical results produced different PDF bytes")
	}
}

func TestPaginate_DifferentContent(t *testing.T) {
	a, err := Paginate(sampleResult(1))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	r := sampleResult(1)
	r.OverallVerdict = model.VerdictTrue
	b, err := Paginate(r)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("different verdicts produced identical output")
	}
}

func TestPaginate_NilResult(t *testing.T) {
	if _, err := Paginate(nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestPDFCanvas_WrapFitsWidth(t *testing.T) {
	c := NewPDFCanvas(A4)
	text := strings.Repeat("Verification requires independent sources ", 20) + "東京"

	lines := c.Wrap(text, bodyStyle, A4.ContentWidth())
	if len(lines) < 2 {
		t.Fatalf("expected several lines, got %d", len(lines))
	}
	for _, line := range lines {
		if w := c.Width(line, bodyStyle); w > A4.ContentWidth() {
			t.Errorf("line %q is %.2fmm wide", line, w)
		}
	}
}

// cloneResult returns a deep copy of r via its JSON form
func cloneResult(r *model.AnalysisResult) *model.AnalysisResult {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		panic(err)
	}
	var out model.AnalysisResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		panic(err)
	}
	return &out
}
