package model

// MaxClaims is the most claims the response contract allows
const MaxClaims = 5

// MaxEvidencePerClaim is the most evidence items per claim
const MaxEvidencePerClaim = 3

// AnalysisResult is the root object returned by the generation service.
// It is treated as immutable once validated and is the sole input to rendering.
type AnalysisResult struct {
	InputSummary       InputSummary    `json:"input_summary"`
	Claims             []Claim         `json:"claims"`
	OverallVerdict     Verdict         `json:"overall_verdict"`
	OverallConfidence  float64         `json:"overall_confidence"`
	ExplainableSummary string          `json:"explainable_summary"` // 2-3 sentences
	SuggestedActions   []string        `json:"suggested_actions"`
	SafetyWarnings     []SafetyWarning `json:"safety_warnings"`
	Meta               Meta            `json:"meta"`

	// IllegibleText is set by the model when OCR of an image failed
	IllegibleText bool `json:"illegible_text,omitempty"`

	// GroundingSources are the web sources the service reported in its search
	// metadata. They are informational and never influence verdicts.
	GroundingSources []GroundingSource `json:"grounding_sources,omitempty"`
}

// InputSummary describes what was submitted
type InputSummary struct {
	InputType           InputType `json:"input_type"`
	RawExcerpt          string    `json:"raw_excerpt"` // <= 300 chars
	DetectedClaimsCount int       `json:"detected_claims_count"`
}

// InputType classifies the submitted medium
type InputType string

const (
	InputText  InputType = "text"
	InputImage InputType = "image"
	InputVideo InputType = "video"
	InputAudio InputType = "audio"
	InputPDF   InputType = "pdf"
	InputURL   InputType = "url"
	InputMixed InputType = "mixed"
)

// SafetyWarning flags content that carries medical, legal, privacy or similar risk
type SafetyWarning struct {
	Category          SafetyCategory `json:"category"`
	Message           string         `json:"message"`
	RecommendedAction string         `json:"recommended_action"`
}

// SafetyCategory classifies a safety warning
type SafetyCategory string

const (
	SafetyMedical        SafetyCategory = "medical"
	SafetyLegal          SafetyCategory = "legal"
	SafetyPrivacy        SafetyCategory = "privacy"
	SafetyViolentContent SafetyCategory = "violent_content"
	SafetySelfHarm       SafetyCategory = "self_harm"
	SafetyOther          SafetyCategory = "other"
)

// Meta carries generation metadata
type Meta struct {
	SearchQueries []string `json:"search_queries"`
	TimestampUTC  string   `json:"timestamp_utc"`
	Model         string   `json:"model"`
	Notes         string   `json:"notes,omitempty"`
	VisionNote    string   `json:"vision_note,omitempty"`
}

// GroundingSource is a web page the generation service consulted
type GroundingSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// EvidenceURLs returns every evidence URL in claim order, without duplicates
func (r *AnalysisResult) EvidenceURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, c := range r.Claims {
		for _, ev := range c.Evidence {
			if ev.SourceURL == "" || seen[ev.SourceURL] {
				continue
			}
			seen[ev.SourceURL] = true
			urls = append(urls, ev.SourceURL)
		}
	}
	return urls
}
