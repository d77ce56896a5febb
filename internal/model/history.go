package model

import (
	"time"
	"unicode/utf8"
)

// HistoryCapacity is the default number of retained history entries
const HistoryCapacity = 10

// HistoryLabelMax is the longest query label kept in history, in runes
const HistoryLabelMax = 60

// HistoryEntry is one completed analysis in the recent-results list
type HistoryEntry struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	Date       time.Time `json:"date"`
	Verdict    Verdict   `json:"verdict"`
	Confidence float64   `json:"confidence"`
}

// EllipsizeLabel truncates s to HistoryLabelMax runes, marking the cut with "..."
func EllipsizeLabel(s string) string {
	if utf8.RuneCountInString(s) <= HistoryLabelMax {
		return s
	}
	runes := []rune(s)
	return string(runes[:HistoryLabelMax-3]) + "..."
}
