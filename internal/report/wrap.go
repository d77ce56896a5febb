package report

import (
	"strings"
	"unicode/utf8"
)

// MaxQuoteChars caps the evidence quote printed under each link
const MaxQuoteChars = 100

const ellipsis = "..."

// Measurer reports rendered text widths in millimetres
type Measurer interface {
	Width(s string, st Style) float64
	Wrap(s string, st Style, width float64) []string
}

// wrapText breaks s into lines no wider than width using a greedy fill.
// Explicit newlines are kept; a single word wider than the line is split
// between runes.
func wrapText(s string, width float64, measure func(string) float64) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for measure(w) > width {
				head, tail := splitFit(w, width, measure)
				lines = append(lines, head)
				w = tail
			}
			line = w
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitFit returns the longest rune prefix of w that fits width, never empty
func splitFit(w string, width float64, measure func(string) float64) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && measure(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// fitLine shortens s with a trailing ellipsis until it fits width
func fitLine(s string, width float64, measure func(string) float64) string {
	if measure(s) <= width {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + ellipsis
		if measure(candidate) <= width {
			return candidate
		}
	}
	return ellipsis
}

// truncateQuote caps q at MaxQuoteChars characters, marking the cut with "..."
func truncateQuote(q string) string {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) <= MaxQuoteChars {
		return q
	}
	return string([]rune(q)[:MaxQuoteChars]) + ellipsis
}
