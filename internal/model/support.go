package model

// Support is a transparent, non-normative summary of how well the cited
// evidence holds up. It never changes a verdict.
type Support struct {
	Index      int      `json:"index"`      // 0-100
	Confidence string   `json:"confidence"` // low, medium, high
	Signals    []Signal `json:"signals"`
}

// Signal is one diagnostic with the data it was computed from
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a diagnostic signal
type SignalType string

const (
	SignalEvidenceCoverage      SignalType = "evidence_coverage"      // Claims with at least one source
	SignalAuthorityDistribution SignalType = "authority_distribution" // Authority tier balance
	SignalFreshness             SignalType = "freshness"              // Age of sources
	SignalAccessibility         SignalType = "accessibility"          // Dead link ratio
	SignalConflict              SignalType = "conflict"               // One source behind opposing verdicts
)

// SignalSeverity indicates the importance of a signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
