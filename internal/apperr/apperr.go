// Package apperr defines the error kinds the analysis pipeline can fail with and
// maps each of them to a short message suitable for end users.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure
type Kind int

const (
	KindUnknown Kind = iota
	KindInput           // No content submitted
	KindMedia           // Unreadable or invalid file, no extractable text
	KindAuth            // Missing or invalid credential
	KindQuota           // Rate limited or quota exhausted
	KindSafety          // Content-policy rejection
	KindNotFound        // Invalid model or resource reference
	KindEmptyResponse   // Service returned no text
	KindNoJSON          // No JSON object delimiters in the response
	KindMalformedJSON   // Candidate JSON failed to parse
	KindSchemaViolation // Required fields absent
	KindTimeout         // Caller-configured deadline expired
	KindTransport       // Generic network or service fault
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindInput:           "input",
	KindMedia:           "media",
	KindAuth:            "auth",
	KindQuota:           "quota",
	KindSafety:          "safety_block",
	KindNotFound:        "not_found",
	KindEmptyResponse:   "empty_response",
	KindNoJSON:          "no_json_found",
	KindMalformedJSON:   "malformed_json",
	KindSchemaViolation: "schema_violation",
	KindTimeout:         "timeout",
	KindTransport:       "transport",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified pipeline error
type Error struct {
	Kind Kind
	Op   string // Component that failed, e.g. "media.pdf"
	Err  error  // Underlying cause, may be nil
	Raw  string // Raw model output, kept for extraction failures
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Kind, so errors.Is(err, apperr.Quota)
// style sentinels work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// New creates a classified error
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates a classified error with a formatted cause
func Newf(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Sentinels for errors.Is
var (
	Input           = &Error{Kind: KindInput}
	Media           = &Error{Kind: KindMedia}
	Auth            = &Error{Kind: KindAuth}
	Quota           = &Error{Kind: KindQuota}
	Safety          = &Error{Kind: KindSafety}
	NotFound        = &Error{Kind: KindNotFound}
	EmptyResponse   = &Error{Kind: KindEmptyResponse}
	NoJSON          = &Error{Kind: KindNoJSON}
	MalformedJSON   = &Error{Kind: KindMalformedJSON}
	SchemaViolation = &Error{Kind: KindSchemaViolation}
	Timeout         = &Error{Kind: KindTimeout}
	Transport       = &Error{Kind: KindTransport}
)

// Causes of a KindMedia failure, wrapped in Error.Err
var (
	ErrNoText      = errors.New("no extractable text")
	ErrTooLarge    = errors.New("file too large")
	ErrUnsupported = errors.New("unsupported file type")
)

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// RawText returns the raw model output attached to err, if any
func RawText(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Raw
	}
	return ""
}
