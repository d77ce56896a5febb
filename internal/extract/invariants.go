package extract

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/factlens/internal/model"
)

// Rule identifies a response-contract rule that Extract does not enforce
type Rule string

const (
	RuleMaxClaims        Rule = "max_claims"
	RuleEvidenceRequired Rule = "evidence_required"
	RuleMaxEvidence      Rule = "max_evidence"
	RuleEvidenceURL      Rule = "evidence_url"
	RuleSourceType       Rule = "source_type"
	RuleVerdict          Rule = "verdict"
	RuleClaimType        Rule = "claim_type"
	RuleConfidence       Rule = "confidence_range"
	RuleQuoteLength      Rule = "quote_length"
	RuleExcerptLength    Rule = "excerpt_length"
	RuleSafetyCategory   Rule = "safety_category"
)

// MaxQuoteWords is the longest evidence quote the contract allows
const MaxQuoteWords = 25

// MaxExcerptChars is the longest input_summary.raw_excerpt the contract allows
const MaxExcerptChars = 300

// Violation is a contract rule broken by an otherwise valid result. It is a
// warning: the result is still rendered.
type Violation struct {
	Rule    Rule   `json:"rule"`
	ClaimID string `json:"claim_id,omitempty"`
	Claim   int    `json:"claim"` // 1-based claim number, 0 for the whole result
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Claim > 0 {
		return fmt.Sprintf("claim %d: %s (%s)", v.Claim, v.Message, v.Rule)
	}
	return fmt.Sprintf("%s (%s)", v.Message, v.Rule)
}

// CheckInvariants applies the stricter per-claim rules of the response
// contract. It never modifies r.
func CheckInvariants(r *model.AnalysisResult) []Violation {
	if r == nil {
		return nil
	}

	var out []Violation
	add := func(rule Rule, claim int, id, format string, args ...interface{}) {
		out = append(out, Violation{Rule: rule, Claim: claim, ClaimID: id, Message: fmt.Sprintf(format, args...)})
	}

	if len(r.Claims) > model.MaxClaims {
		add(RuleMaxClaims, 0, "", "%d claims returned, at most %d allowed", len(r.Claims), model.MaxClaims)
	}
	if !r.OverallVerdict.Known() {
		add(RuleVerdict, 0, "", "overall verdict %q is not a known verdict", r.OverallVerdict)
	}
	if !inUnitRange(r.OverallConfidence) {
		add(RuleConfidence, 0, "", "overall confidence %.2f is outside [0,1]", r.OverallConfidence)
	}
	if n := utf8.RuneCountInString(r.InputSummary.RawExcerpt); n > MaxExcerptChars {
		add(RuleExcerptLength, 0, "", "raw excerpt is %d characters, at most %d allowed", n, MaxExcerptChars)
	}
	for _, w := range r.SafetyWarnings {
		if !knownSafetyCategory(w.Category) {
			add(RuleSafetyCategory, 0, "", "safety warning category %q is not known", w.Category)
		}
	}

	for i, c := range r.Claims {
		n := i + 1

		if !c.Verdict.Known() {
			add(RuleVerdict, n, c.ID, "verdict %q is not a known verdict", c.Verdict)
		}
		if c.ClaimType != "" && c.ClaimType != model.ClaimTypeExplicit && c.ClaimType != model.ClaimTypeImplicit {
			add(RuleClaimType, n, c.ID, "claim type %q is not known", c.ClaimType)
		}
		if !inUnitRange(c.VerdictConfidence) {
			add(RuleConfidence, n, c.ID, "verdict confidence %.2f is outside [0,1]", c.VerdictConfidence)
		}
		if c.Verdict.Normalize() != model.VerdictUnknown && len(c.Evidence) == 0 {
			add(RuleEvidenceRequired, n, c.ID, "verdict %q has no supporting evidence", c.Verdict)
		}
		if len(c.Evidence) > model.MaxEvidencePerClaim {
			add(RuleMaxEvidence, n, c.ID, "%d evidence items, at most %d allowed", len(c.Evidence), model.MaxEvidencePerClaim)
		}

		for j, ev := range c.Evidence {
			if !validSourceURL(ev.SourceURL) {
				add(RuleEvidenceURL, n, c.ID, "evidence %d has an invalid source URL %q", j+1, ev.SourceURL)
			}
			if !ev.SourceType.Known() {
				add(RuleSourceType, n, c.ID, "evidence %d has unknown source type %q", j+1, ev.SourceType)
			}
			if !inUnitRange(ev.ConfidenceInSource) {
				add(RuleConfidence, n, c.ID, "evidence %d confidence %.2f is outside [0,1]", j+1, ev.ConfidenceInSource)
			}
			if words := len(strings.Fields(ev.Quote)); words > MaxQuoteWords {
				add(RuleQuoteLength, n, c.ID, "evidence %d quote has %d words, at most %d allowed", j+1, words, MaxQuoteWords)
			}
		}
	}

	return out
}

func inUnitRange(f float64) bool {
	return f >= 0 && f <= 1
}

func validSourceURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func knownSafetyCategory(c model.SafetyCategory) bool {
	switch c {
	case model.SafetyMedical, model.SafetyLegal, model.SafetyPrivacy,
		model.SafetyViolentContent, model.SafetySelfHarm, model.SafetyOther:
		return true
	}
	return false
}
