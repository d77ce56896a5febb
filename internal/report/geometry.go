// Package report lays out an AnalysisResult as a paginated document and
// writes the downloadable artifacts.
package report

import "github.com/ppiankov/factlens/internal/model"

// ptToMM converts font points to millimetres
const ptToMM = 25.4 / 72

// Geometry holds the fixed page constants, in millimetres
type Geometry struct {
	Width  float64
	Height float64
	Margin float64
}

// A4 is the portrait page every report is laid out on
var A4 = Geometry{Width: 210, Height: 297, Margin: 20}

// ContentWidth is the usable width between the side margins
func (g Geometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

// Top is where the cursor starts on every page
func (g Geometry) Top() float64 {
	return g.Margin
}

// Bottom is the lowest point a block may reach (H - M)
func (g Geometry) Bottom() float64 {
	return g.Height - g.Margin
}

// ContentHeight is the vertical space available on one page
func (g Geometry) ContentHeight() float64 {
	return g.Bottom() - g.Top()
}

// Style selects a core font variant
type Style struct {
	Size   float64 // points
	Bold   bool
	Italic bool
}

// LineHeight is the vertical advance for one line of text in this style
func (s Style) LineHeight() float64 {
	return s.Size * ptToMM * 1.4
}

// baseline returns the text baseline for a line whose top edge is at top
func (s Style) baseline(top float64) float64 {
	size := s.Size * ptToMM
	return top + (s.LineHeight()-size)/2 + size*0.8
}

// Color is an RGB triple
type Color struct {
	R, G, B int
}

var (
	titleStyle    = Style{Size: 20, Bold: true}
	metaStyle     = Style{Size: 9}
	boxLabelStyle = Style{Size: 9, Bold: true}
	boxStyle      = Style{Size: 16, Bold: true}
	headingStyle  = Style{Size: 13, Bold: true}
	bodyStyle     = Style{Size: 10}
	claimHead     = Style{Size: 12, Bold: true}
	claimStyle    = Style{Size: 10, Italic: true}
	linkStyle     = Style{Size: 9.5}
	quoteStyle    = Style{Size: 9, Italic: true}
	warnStyle     = Style{Size: 10, Bold: true}
	footerStyle   = Style{Size: 8}

	black    = Color{33, 33, 33}
	gray     = Color{117, 117, 117}
	white    = Color{255, 255, 255}
	divider  = Color{200, 200, 200}
	linkBlue = Color{21, 101, 192}
	warnRed  = Color{183, 28, 28}
)

// VerdictColor returns the accent color for a verdict
func VerdictColor(v model.Verdict) Color {
	switch v.Normalize() {
	case model.VerdictTrue:
		return Color{46, 125, 50}
	case model.VerdictFalse:
		return Color{198, 40, 40}
	case model.VerdictMisleading:
		return Color{239, 108, 0}
	case model.VerdictOutOfContext:
		return Color{249, 168, 37}
	case model.VerdictAIGenerated:
		return Color{106, 27, 154}
	default:
		return Color{97, 97, 97}
	}
}
