package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ppiankov/factlens/internal/model"
)

// Canvas is the drawing surface a Document is replayed onto
type Canvas interface {
	Measurer
	AddPage()
	Text(x, y float64, s string, st Style, c Color)
	Line(x1, y1, x2, y2 float64, c Color)
	Rect(x, y, w, h float64, fill Color)
	Link(x, y, w, h float64, url string)
	Output(w io.Writer) error
}

// FooterText is the page label stamped on page i of n
func FooterText(i, n int) string {
	return fmt.Sprintf("Page %d of %d", i, n)
}

// Render replays every page of doc onto c and stamps each one with its
// "Page i of N" footer
func Render(doc *Document, c Canvas) {
	total := doc.PageCount()
	for i, page := range doc.Pages {
		c.AddPage()
		for _, op := range page.Ops {
			draw(c, op)
		}

		footer := FooterText(i+1, total)
		x := (doc.Geometry.Width - c.Width(footer, footerStyle)) / 2
		c.Text(x, doc.Geometry.Height-doc.Geometry.Margin/2, footer, footerStyle, gray)
	}
}

func draw(c Canvas, op Op) {
	switch op.Kind {
	case OpText:
		c.Text(op.X, op.Y, op.Text, op.Style, op.Color)
	case OpLine:
		c.Line(op.X, op.Y, op.X2, op.Y2, op.Color)
	case OpRect:
		c.Rect(op.X, op.Y, op.W, op.H, op.Color)
	case OpLink:
		c.Link(op.X, op.Y, op.W, op.H, op.URL)
	}
}

// Paginate lays out r on A4 pages and returns the PDF bytes. Identical
// results produce identical bytes.
func Paginate(r *model.AnalysisResult) ([]byte, error) {
	if r == nil {
		return nil, errors.New("report: nil result")
	}

	canvas := NewPDFCanvas(A4)
	Render(Layout(r, A4, canvas), canvas)

	var buf bytes.Buffer
	if err := canvas.Output(&buf); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
