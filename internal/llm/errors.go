package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ppiankov/factlens/internal/apperr"
)

// classifyStatus maps an HTTP status and service message to an error kind
func classifyStatus(status int, message string) apperr.Kind {
	lower := strings.ToLower(message)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.KindAuth
	case status == http.StatusTooManyRequests:
		return apperr.KindQuota
	case status == http.StatusNotFound:
		return apperr.KindNotFound
	case strings.Contains(lower, "api key") || strings.Contains(lower, "api_key"):
		// Gemini reports a bad key as 400 INVALID_ARGUMENT
		return apperr.KindAuth
	case strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit"):
		return apperr.KindQuota
	case strings.Contains(lower, "safety") || strings.Contains(lower, "blocked"):
		return apperr.KindSafety
	default:
		return apperr.KindTransport
	}
}

// classifyStatusName maps a Google RPC status name to an error kind
func classifyStatusName(status string) (apperr.Kind, bool) {
	switch status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return apperr.KindAuth, true
	case "RESOURCE_EXHAUSTED":
		return apperr.KindQuota, true
	case "NOT_FOUND":
		return apperr.KindNotFound, true
	case "DEADLINE_EXCEEDED":
		return apperr.KindTimeout, true
	}
	return apperr.KindUnknown, false
}

// classify wraps err as an apperr.Error. Errors that are already classified
// keep their kind; context expiry and network timeouts become KindTimeout.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var classified *apperr.Error
	if errors.As(err, &classified) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(apperr.KindTimeout, op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.New(apperr.KindTimeout, op, err)
	}

	return apperr.New(apperr.KindTransport, op, err)
}
