package model

import "strings"

// Claim represents a single factual assertion extracted from the input
type Claim struct {
	ID                     string     `json:"id"`
	ClaimText              string     `json:"claim_text"`
	ClaimType              ClaimType  `json:"claim_type"`
	Entities               []string   `json:"entities"`
	Evidence               []Evidence `json:"evidence"`                 // 0-3 items, ordered
	Verdict                Verdict    `json:"verdict"`                  // Per-claim verdict
	VerdictConfidence      float64    `json:"verdict_confidence"`       // [0,1]
	Reasoning              string     `json:"reasoning"`                // Short explanation
	SuggestedSearchQueries []string   `json:"suggested_search_queries"` // For the reader to follow up
	Provenance             []string   `json:"provenance"`               // e.g. "vision", "web_search", "inference"
}

// ClaimType categorizes how the claim appears in the input
type ClaimType string

const (
	ClaimTypeExplicit ClaimType = "explicit" // Stated directly
	ClaimTypeImplicit ClaimType = "implicit" // Implied by framing or imagery
)

// Verdict is the categorical truth assessment of a claim or of the whole input
type Verdict string

const (
	VerdictTrue         Verdict = "true"
	VerdictFalse        Verdict = "false"
	VerdictMisleading   Verdict = "misleading"
	VerdictOutOfContext Verdict = "out_of_context"
	VerdictAIGenerated  Verdict = "ai_generated"
	VerdictUnknown      Verdict = "unknown"
)

// Verdicts lists every verdict the response contract allows
var Verdicts = []Verdict{
	VerdictTrue,
	VerdictFalse,
	VerdictMisleading,
	VerdictOutOfContext,
	VerdictAIGenerated,
	VerdictUnknown,
}

// Known reports whether v is one of the contract verdicts
func (v Verdict) Known() bool {
	for _, known := range Verdicts {
		if v == known {
			return true
		}
	}
	return false
}

// Normalize lower-cases the verdict and maps anything outside the contract to unknown
func (v Verdict) Normalize() Verdict {
	n := Verdict(strings.ToLower(strings.TrimSpace(string(v))))
	if n.Known() {
		return n
	}
	return VerdictUnknown
}

// Label returns the upper-case display form, e.g. "OUT OF CONTEXT"
func (v Verdict) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(v.Normalize()), "_", " "))
}
