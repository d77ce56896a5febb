// Package extract recovers a single JSON analysis result from free-form model
// output and checks it against the response contract.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/model"
)

// requiredFields must be present (and not null) in the root object
var requiredFields = []string{"claims", "overall_verdict"}

// ExtractionError describes why raw output could not be turned into a result.
// RawText is always the complete, unmodified model output.
type ExtractionError struct {
	Kind    apperr.Kind // KindNoJSON, KindMalformedJSON or KindSchemaViolation
	RawText string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Outcome is the tagged result of an extraction: exactly one of Result and
// Err is set
type Outcome struct {
	Result *model.AnalysisResult
	Err    *ExtractionError
}

// OK reports whether extraction succeeded
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// Unwrap converts the outcome to the conventional (value, error) pair. The
// error is an *apperr.Error carrying the raw text.
func (o Outcome) Unwrap() (*model.AnalysisResult, error) {
	if o.Err != nil {
		return nil, &apperr.Error{Kind: o.Err.Kind, Op: "extract", Err: o.Err, Raw: o.Err.RawText}
	}
	return o.Result, nil
}

func failure(kind apperr.Kind, raw string, cause error) Outcome {
	return Outcome{Err: &ExtractionError{Kind: kind, RawText: raw, Cause: cause}}
}

// Locate returns the substring from the first "{" to the last "}" of raw.
//
// It reports false when either delimiter is missing, when they are out of
// order, or when braces inside the candidate do not balance (braces within
// JSON strings are ignored). Prose containing braces after the object, such
// as a trailing "}" in an emoticon, makes the candidate unbalanced and is a
// known false negative.
func Locate(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end < start {
		return "", false
	}

	candidate := raw[start : end+1]
	if !balanced(candidate) {
		return "", false
	}
	return candidate, true
}

// balanced reports whether braces outside string literals pair up
func balanced(s string) bool {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}

	return depth == 0 && !inString
}

// Extract recovers and minimally validates an AnalysisResult from raw output.
// Only the presence of the required root fields is checked; enum membership
// and per-claim rules are left to CheckInvariants.
func Extract(raw string) Outcome {
	candidate, ok := Locate(raw)
	if !ok {
		return failure(apperr.KindNoJSON, raw, errors.New("no JSON object delimiters found"))
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &root); err != nil {
		return failure(apperr.KindMalformedJSON, raw, err)
	}

	var missing []string
	for _, field := range requiredFields {
		value, ok := root[field]
		if !ok || string(value) == "null" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return failure(apperr.KindSchemaViolation, raw, fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", ")))
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return failure(apperr.KindSchemaViolation, raw, fmt.Errorf("field has the wrong type: %w", err))
	}

	return Outcome{Result: &result}
}
