package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// OpKind identifies a draw operation
type OpKind int

const (
	OpText OpKind = iota
	OpLine
	OpRect
	OpLink
)

// Op is a single draw operation on a page.
// X/Y is the text baseline origin, the line start or the rect/link top-left.
type Op struct {
	Kind   OpKind
	X, Y   float64
	X2, Y2 float64 // line end
	W, H   float64 // rect and link extent
	Text   string
	URL    string
	Style  Style
	Color  Color
}

// Block records the vertical extent of one unbreakable block, including the
// space reserved above it
type Block struct {
	Name   string
	Y      float64
	Height float64
}

// Page is the content of one page, without its footer
type Page struct {
	Ops    []Op
	Blocks []Block
}

// Document is the result of the layout pass: every page in order. The total
// page count is only final once layout completes, so footers are stamped
// by Render.
type Document struct {
	Geometry Geometry
	Pages    []Page
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

const (
	evidenceIndent = 4
	quoteIndent    = 8
	verdictBoxH    = 20
)

// row is one line of a block, drawn relative to its top edge
type row struct {
	height float64
	draw   func(top float64) []Op
}

type layout struct {
	geom Geometry
	m    Measurer
	doc  *Document
	y    float64
}

// Layout flows r onto pages of the given geometry. It is a pure function of
// its inputs: the same result, geometry and measurer always produce the same
// pages.
func Layout(r *model.AnalysisResult, geom Geometry, m Measurer) *Document {
	l := &layout{geom: geom, m: m, doc: &Document{Geometry: geom}}
	l.newPage()

	l.header(r)
	l.verdictBox(r)
	l.confidence(r)
	l.summary(r)
	for i := range r.Claims {
		l.claim(i+1, &r.Claims[i])
	}
	l.safety(r.SafetyWarnings)
	l.actions(r.SuggestedActions)
	l.sources(r.GroundingSources)

	return l.doc
}

func (l *layout) newPage() {
	l.doc.Pages = append(l.doc.Pages, Page{})
	l.y = l.geom.Top()
}

// place writes rows as one block. When the block would cross H - M it goes
// to a fresh page instead.
func (l *layout) place(name string, lead float64, rows ...row) {
	h := lead
	for _, r := range rows {
		h += r.height
	}
	if l.y+h > l.geom.Bottom() && l.y > l.geom.Top() {
		l.newPage()
	}

	page := &l.doc.Pages[len(l.doc.Pages)-1]
	page.Blocks = append(page.Blocks, Block{Name: name, Y: l.y, Height: h})

	top := l.y + lead
	for _, r := range rows {
		page.Ops = append(page.Ops, r.draw(top)...)
		top += r.height
	}
	l.y += h
}

// flow places rows as a single block when they fit on one page. Longer runs
// keep their first keep rows together and continue one row per block.
func (l *layout) flow(name string, lead float64, keep int, rows []row) {
	if len(rows) == 0 {
		return
	}
	total := lead
	for _, r := range rows {
		total += r.height
	}
	if total <= l.geom.ContentHeight() {
		l.place(name, lead, rows...)
		return
	}

	keep = max(1, min(keep, len(rows)))
	l.place(name, lead, rows[:keep]...)
	for _, r := range rows[keep:] {
		l.place(name, 0, r)
	}
}

func (l *layout) textRow(s string, st Style, c Color, indent float64) row {
	x := l.geom.Margin + indent
	return row{height: st.LineHeight(), draw: func(top float64) []Op {
		if s == "" {
			return nil
		}
		return []Op{{Kind: OpText, X: x, Y: st.baseline(top), Text: s, Style: st, Color: c}}
	}}
}

// linkRow draws s with a clickable region exactly as wide as the rendered text
func (l *layout) linkRow(s, url string, st Style, c Color, indent float64) row {
	x := l.geom.Margin + indent
	w := l.m.Width(s, st)
	return row{height: st.LineHeight(), draw: func(top float64) []Op {
		return []Op{
			{Kind: OpText, X: x, Y: st.baseline(top), Text: s, Style: st, Color: c},
			{Kind: OpLink, X: x, Y: top, W: w, H: st.LineHeight(), URL: url},
		}
	}}
}

func (l *layout) dividerRow(h float64) row {
	x1, x2 := l.geom.Margin, l.geom.Width-l.geom.Margin
	return row{height: h, draw: func(top float64) []Op {
		y := top + h/2
		return []Op{{Kind: OpLine, X: x1, Y: y, X2: x2, Y2: y, Color: divider}}
	}}
}

func (l *layout) wrapped(s string, st Style, c Color, indent float64) []row {
	var rows []row
	for _, line := range l.m.Wrap(s, st, l.geom.ContentWidth()-indent) {
		rows = append(rows, l.textRow(line, st, c, indent))
	}
	return rows
}

// oneLine truncates s to the content width minus indent
func (l *layout) oneLine(s string, st Style, indent float64) string {
	return fitLine(s, l.geom.ContentWidth()-indent, func(v string) float64 {
		return l.m.Width(v, st)
	})
}

func (l *layout) header(r *model.AnalysisResult) {
	rows := []row{l.textRow("Fact-Check Report", titleStyle, black, 0)}
	if meta := metaLine(r); meta != "" {
		rows = append(rows, l.textRow(l.oneLine(meta, metaStyle, 0), metaStyle, gray, 0))
	}
	l.place("header", 0, rows...)

	if excerpt := strings.TrimSpace(r.InputSummary.RawExcerpt); excerpt != "" {
		l.flow("excerpt", 2, 1, l.wrapped(`"`+excerpt+`"`, quoteStyle, gray, 0))
	}
}

func metaLine(r *model.AnalysisResult) string {
	var parts []string
	if r.InputSummary.InputType != "" {
		parts = append(parts, "Input: "+string(r.InputSummary.InputType))
	}
	if r.Meta.TimestampUTC != "" {
		parts = append(parts, "Generated: "+r.Meta.TimestampUTC)
	}
	if r.Meta.Model != "" {
		parts = append(parts, "Model: "+r.Meta.Model)
	}
	return strings.Join(parts, " | ")
}

func (l *layout) verdictBox(r *model.AnalysisResult) {
	fill := VerdictColor(r.OverallVerdict)
	label := r.OverallVerdict.Label()
	x, w := l.geom.Margin, l.geom.ContentWidth()

	box := row{height: verdictBoxH, draw: func(top float64) []Op {
		return []Op{
			{Kind: OpRect, X: x, Y: top, W: w, H: verdictBoxH, Color: fill},
			{Kind: OpText, X: x + 5, Y: top + 6.5, Text: "OVERALL VERDICT", Style: boxLabelStyle, Color: white},
			{Kind: OpText, X: x + 5, Y: top + 15, Text: label, Style: boxStyle, Color: white},
		}
	}}
	l.place("verdict", 6, box)
}

func (l *layout) confidence(r *model.AnalysisResult) {
	line := fmt.Sprintf("Confidence: %s | Claims analyzed: %d", percent(r.OverallConfidence), len(r.Claims))
	l.place("confidence", 4, l.textRow(line, bodyStyle, black, 0))
}

func (l *layout) summary(r *model.AnalysisResult) {
	text := strings.TrimSpace(r.ExplainableSummary)
	if text == "" && !r.IllegibleText {
		return
	}

	rows := []row{l.textRow("Executive Summary", headingStyle, black, 0)}
	rows = append(rows, l.wrapped(text, bodyStyle, black, 0)...)
	if r.IllegibleText {
		rows = append(rows, l.wrapped("Note: text in the image could not be read reliably.", quoteStyle, gray, 0)...)
	}
	l.flow("summary", 8, 2, rows)
}

func (l *layout) claim(n int, c *model.Claim) {
	head := fmt.Sprintf("Claim %d: %s", n, c.Verdict.Label())
	if c.VerdictConfidence > 0 {
		head += fmt.Sprintf(" (%s confidence)", percent(c.VerdictConfidence))
	}

	rows := []row{
		l.dividerRow(6),
		l.textRow(l.oneLine(head, claimHead, 0), claimHead, VerdictColor(c.Verdict), 0),
	}
	if text := strings.TrimSpace(c.ClaimText); text != "" {
		rows = append(rows, l.wrapped(`"`+text+`"`, claimStyle, black, 0)...)
	}
	l.flow("claim", 6, 3, rows)

	if reasoning := strings.TrimSpace(c.Reasoning); reasoning != "" {
		l.flow("reasoning", 2, 1, l.wrapped(reasoning, bodyStyle, black, 0))
	}

	if len(c.Evidence) == 0 {
		l.place("evidence", 2, l.textRow("No evidence cited.", quoteStyle, gray, evidenceIndent))
		return
	}
	for i := range c.Evidence {
		l.evidence(i+1, &c.Evidence[i])
	}
}

func (l *layout) evidence(n int, ev *model.Evidence) {
	label := l.oneLine(evidenceLabel(n, ev), linkStyle, evidenceIndent)

	var rows []row
	if ev.SourceURL != "" {
		rows = append(rows, l.linkRow(label, ev.SourceURL, linkStyle, linkBlue, evidenceIndent))
	} else {
		rows = append(rows, l.textRow(label, linkStyle, gray, evidenceIndent))
	}
	if q := truncateQuote(ev.Quote); q != "" {
		rows = append(rows, l.wrapped(`"`+q+`"`, quoteStyle, gray, quoteIndent)...)
	}
	l.flow("evidence", 2, 2, rows)
}

func evidenceLabel(n int, ev *model.Evidence) string {
	title := strings.TrimSpace(ev.SourceTitle)
	if title == "" {
		title = ev.SourceURL
	}
	if title == "" {
		title = "Untitled source"
	}
	label := fmt.Sprintf("[%d] %s", n, title)
	if ev.SourceType != "" {
		label += " (" + string(ev.SourceType) + ")"
	}
	return label
}

func (l *layout) safety(warnings []model.SafetyWarning) {
	for i, w := range warnings {
		var rows []row
		keep, lead := 1, 4.0
		if i == 0 {
			rows = append(rows, l.textRow("Safety Warnings", headingStyle, warnRed, 0))
			keep, lead = 2, 8
		}
		category := strings.ToUpper(strings.ReplaceAll(string(w.Category), "_", " "))
		if category == "" {
			category = "OTHER"
		}
		rows = append(rows, l.textRow(category, warnStyle, warnRed, 0))
		rows = append(rows, l.wrapped(w.Message, bodyStyle, black, 0)...)
		if action := strings.TrimSpace(w.RecommendedAction); action != "" {
			rows = append(rows, l.wrapped("Recommended action: "+action, claimStyle, black, 0)...)
		}
		l.flow("safety", lead, keep, rows)
	}
}

func (l *layout) actions(actions []string) {
	var rows []row
	for _, a := range actions {
		if a = strings.TrimSpace(a); a != "" {
			rows = append(rows, l.wrapped("- "+a, bodyStyle, black, 0)...)
		}
	}
	if len(rows) == 0 {
		return
	}
	rows = append([]row{l.textRow("Suggested Actions", headingStyle, black, 0)}, rows...)
	l.flow("actions", 8, 2, rows)
}

func (l *layout) sources(sources []model.GroundingSource) {
	var rows []row
	for _, s := range sources {
		if s.URL == "" {
			continue
		}
		title := s.Title
		if title == "" {
			title = s.URL
		}
		label := l.oneLine(fmt.Sprintf("[%d] %s", len(rows)+1, title), linkStyle, 0)
		rows = append(rows, l.linkRow(label, s.URL, linkStyle, linkBlue, 0))
	}
	if len(rows) == 0 {
		return
	}
	rows = append([]row{l.textRow("Sources Consulted", headingStyle, black, 0)}, rows...)
	l.flow("sources", 8, 2, rows)
}

func percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}
