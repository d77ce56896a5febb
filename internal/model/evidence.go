package model

import "time"

// Evidence represents a cited external source supporting or refuting a claim
type Evidence struct {
	SourceTitle        string     `json:"source_title"`
	SourceURL          string     `json:"source_url"`
	SourceType         SourceType `json:"source_type"`
	Quote              string     `json:"quote"`                    // <= 25 words, may be empty
	ExtractedText      string     `json:"extracted_text,omitempty"` // Longer excerpt, optional
	ConfidenceInSource float64    `json:"confidence_in_source"`     // [0,1]
	RetrievedAt        string     `json:"retrieved_at"`             // Free-form timestamp as emitted by the model
}

// SourceType classifies the kind of source
type SourceType string

const (
	SourceNews      SourceType = "news"
	SourceResearch  SourceType = "research"
	SourceOfficial  SourceType = "official"
	SourceFactcheck SourceType = "factcheck"
	SourceVideo     SourceType = "video"
	SourceArchive   SourceType = "archive"
	SourceOther     SourceType = "other"
)

// Known reports whether t is one of the contract source types
func (t SourceType) Known() bool {
	switch t {
	case SourceNews, SourceResearch, SourceOfficial, SourceFactcheck, SourceVideo, SourceArchive, SourceOther:
		return true
	}
	return false
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Laws, statutes, academic papers, official documents
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// LinkCheck is the outcome of checking one evidence URL
type LinkCheck struct {
	URL          string        `json:"url"`
	ClaimID      string        `json:"claim_id,omitempty"`
	IsAccessible bool          `json:"is_accessible"`
	StatusCode   int           `json:"status_code,omitempty"`
	LastModified *time.Time    `json:"last_modified,omitempty"`
	IsDead       bool          `json:"is_dead"`                // 404, 410, or unreachable
	RedirectURL  string        `json:"redirect_url,omitempty"` // If redirected
	Authority    AuthorityTier `json:"authority"`
	Error        string        `json:"error,omitempty"`
}
