package report

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// documentDate is written as both creation and modification date so that
// output bytes depend only on content
var documentDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// PDFCanvas draws onto an fpdf document using the core Helvetica fonts.
// Text is translated to cp1252 before measuring and drawing.
type PDFCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// NewPDFCanvas creates a canvas with the page size of geom
func NewPDFCanvas(geom Geometry) *PDFCanvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: geom.Width, Ht: geom.Height},
	})
	pdf.SetMargins(geom.Margin, geom.Margin, geom.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Fact-Check Report", true)
	pdf.SetCreator("factlens", true)

	return &PDFCanvas{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *PDFCanvas) setFont(st Style) {
	style := ""
	if st.Bold {
		style += "B"
	}
	if st.Italic {
		style += "I"
	}
	c.pdf.SetFont(fontFamily, style, st.Size)
}

// Width returns the rendered width of s in millimetres
func (c *PDFCanvas) Width(s string, st Style) float64 {
	c.setFont(st)
	return c.pdf.GetStringWidth(c.tr(s))
}

// Wrap breaks s into lines that fit width
func (c *PDFCanvas) Wrap(s string, st Style, width float64) []string {
	return wrapText(s, width, func(line string) float64 {
		return c.Width(line, st)
	})
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) Text(x, y float64, s string, st Style, col Color) {
	c.setFont(st)
	c.pdf.SetTextColor(col.R, col.G, col.B)
	c.pdf.Text(x, y, c.tr(s))
}

func (c *PDFCanvas) Line(x1, y1, x2, y2 float64, col Color) {
	c.pdf.SetDrawColor(col.R, col.G, col.B)
	c.pdf.SetLineWidth(0.3)
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *PDFCanvas) Rect(x, y, w, h float64, fill Color) {
	c.pdf.SetFillColor(fill.R, fill.G, fill.B)
	c.pdf.Rect(x, y, w, h, "F")
}

func (c *PDFCanvas) Link(x, y, w, h float64, url string) {
	c.pdf.LinkString(x, y, w, h, url)
}

// Output finishes the document and writes it to w
func (c *PDFCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
