package apperr

import "errors"

// UserMessage maps err to a short, actionable message. Transport and parser
// details are never included; extraction failures carry their detail because
// it only describes the model's own output.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return "Analysis failed. Please try again."
	}

	switch e.Kind {
	case KindInput:
		return "Please enter text, a URL, or attach an image or PDF to analyze."
	case KindMedia:
		return mediaMessage(e.Err)
	case KindAuth:
		return "The API key is missing or invalid. Check your configuration."
	case KindQuota:
		return "The analysis service is rate limited. Wait a moment and try again."
	case KindSafety:
		return "The content was blocked by the service's safety filters."
	case KindNotFound:
		return "The configured model was not found. Check the model name."
	case KindEmptyResponse:
		return "The analysis service returned an empty response. Try again."
	case KindNoJSON, KindMalformedJSON, KindSchemaViolation:
		msg := "The analysis result could not be read (" + e.Kind.String() + ")"
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	case KindTimeout:
		return "The analysis took too long and was cancelled. Try standard mode or a shorter input."
	default:
		return "Could not reach the analysis service. Check your connection and try again."
	}
}

// mediaMessage picks a fixed message for the cause of a media failure
func mediaMessage(cause error) string {
	switch {
	case errors.Is(cause, ErrNoText):
		return "The attached file has no extractable text. Scanned PDFs are not supported; attach a screenshot instead."
	case errors.Is(cause, ErrTooLarge):
		return "The attached file is too large."
	case errors.Is(cause, ErrUnsupported):
		return "This file type is not supported. Attach an image or a PDF."
	default:
		return "Could not read the attached file. It may be damaged or password protected."
	}
}
