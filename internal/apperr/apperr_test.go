package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("analyze: %w", New(KindQuota, "llm.gemini", errors.New("429")))

	if got := KindOf(err); got != KindQuota {
		t.Errorf("KindOf = %v, want %v", got, KindQuota)
	}
	if !errors.Is(err, Quota) {
		t.Error("expected errors.Is(err, Quota)")
	}
	if errors.Is(err, Auth) {
		t.Error("did not expect errors.Is(err, Auth)")
	}
}

func TestKindOf_Plain(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Errorf("KindOf = %v, want unknown", got)
	}
}

func TestUserMessage_HidesTransportDetail(t *testing.T) {
	err := New(KindTransport, "llm.gemini", errors.New("dial tcp 10.0.0.1:443: secret-host refused"))

	msg := UserMessage(err)
	if strings.Contains(msg, "secret-host") {
		t.Errorf("transport detail leaked into user message: %q", msg)
	}
}

func TestUserMessage_ExtractionDetailShown(t *testing.T) {
	err := &Error{Kind: KindSchemaViolation, Op: "extract", Err: errors.New("missing field overall_verdict")}

	msg := UserMessage(err)
	if !strings.Contains(msg, "overall_verdict") {
		t.Errorf("expected extraction detail in message, got %q", msg)
	}
}

func TestUserMessage_EveryKind(t *testing.T) {
	for kind := range kindNames {
		msg := UserMessage(New(kind, "", nil))
		if msg == "" {
			t.Errorf("empty message for kind %v", kind)
		}
	}
	if UserMessage(nil) != "" {
		t.Error("expected empty message for nil error")
	}
}

func TestRawText(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &Error{Kind: KindMalformedJSON, Raw: "{bad"})
	if got := RawText(err); got != "{bad" {
		t.Errorf("RawText = %q", got)
	}
}

func TestError_String(t *testing.T) {
	err := New(KindMedia, "media.pdf", errors.New("no text"))
	if got := err.Error(); got != "media.pdf: media: no text" {
		t.Errorf("Error() = %q", got)
	}
}

func TestUserMessage_MediaCauses(t *testing.T) {
	parserDetail := errors.New("open PDF: malformed PDF: cross-reference table not found: {1 0 obj}<</Pages 2 0 R>>")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no text", New(KindMedia, "media.pdf", fmt.Errorf("%w (scanned)", ErrNoText)), "no extractable text"},
		{"too large", Newf(KindMedia, "media.image", "%w: image is larger than %d bytes", ErrTooLarge, 4), "too large"},
		{"unsupported", Newf(KindMedia, "media.normalize", "%w %s", ErrUnsupported, "application/zip"), "not supported"},
		{"unreadable", New(KindMedia, "media.pdf", parserDetail), "Could not read the attached file"},
		{"no cause", New(KindMedia, "media.pdf", nil), "Could not read the attached file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := UserMessage(tt.err)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("UserMessage = %q, want it to contain %q", msg, tt.want)
			}
			if strings.Contains(msg, "cross-reference") || strings.Contains(msg, "bytes") || strings.Contains(msg, "application/zip") {
				t.Errorf("cause detail leaked into user message: %q", msg)
			}
		})
	}
}
