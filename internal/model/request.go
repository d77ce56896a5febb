package model

import (
	"fmt"
	"strings"
)

// Mode trades response latency against analytical depth
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeDeep     Mode = "deep"
)

// ParseMode parses a mode name; empty input yields ModeStandard
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStandard:
		return ModeStandard, nil
	case ModeDeep:
		return ModeDeep, nil
	default:
		return "", fmt.Errorf("unknown mode %q (supported: standard, deep)", s)
	}
}

// MediaPayload is inline binary content sent alongside the prompt
type MediaPayload struct {
	Data     []byte
	MimeType string
}

// AnalysisRequest is constructed per submission and discarded after use
type AnalysisRequest struct {
	PrimaryText string        // Free text, URL, or text extracted from a PDF
	Media       *MediaPayload // Inline image, if any
	Mode        Mode
	InputType   InputType // Which medium the primary content came from
	IsURL       bool      // PrimaryText is a bare URL
	PageExcerpt string    // Optional prefetched page text for URL input
	Label       string    // Human label for history, e.g. file name or text prefix
}

// HasContent reports whether the request carries text or media
func (r *AnalysisRequest) HasContent() bool {
	if strings.TrimSpace(r.PrimaryText) != "" {
		return true
	}
	return r.Media != nil && len(r.Media.Data) > 0
}
