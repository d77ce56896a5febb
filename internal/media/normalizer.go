// Package media converts submitted text and files into a single analysis request.
package media

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/model"
)

// File is an uploaded or local file
type File struct {
	Name     string
	Data     []byte
	MimeType string // Optional; detected when empty
}

// Normalizer turns raw input into an AnalysisRequest
type Normalizer struct {
	maxPages      int
	maxImageBytes int64
	maxPDFBytes   int64
	open          OpenFunc
}

// NewNormalizer creates a normalizer with the given limits
func NewNormalizer(cfg model.MediaConfig) *Normalizer {
	maxPages := cfg.MaxPDFPages
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Normalizer{
		maxPages:      maxPages,
		maxImageBytes: cfg.MaxImageBytes,
		maxPDFBytes:   cfg.MaxPDFBytes,
		open:          OpenPDF,
	}
}

// WithPDFOpener replaces the PDF backend (used in tests)
func (n *Normalizer) WithPDFOpener(open OpenFunc) *Normalizer {
	n.open = open
	return n
}

// Normalize builds a request from free text and an optional file.
// Fails with a KindInput error when neither carries content.
func (n *Normalizer) Normalize(text string, file *File, mode model.Mode) (*model.AnalysisRequest, error) {
	text = strings.TrimSpace(text)
	if mode == "" {
		mode = model.ModeStandard
	}

	req := &model.AnalysisRequest{
		Mode:      mode,
		InputType: model.InputText,
		Label:     text,
	}

	if file == nil || len(file.Data) == 0 {
		if text == "" {
			return nil, apperr.New(apperr.KindInput, "media.normalize", errors.New("no text or file submitted"))
		}
		req.PrimaryText = text
		if IsBareURL(text) {
			req.IsURL = true
			req.InputType = model.InputURL
		}
		return req, nil
	}

	if file.Name != "" {
		req.Label = file.Name
	}

	mimeType := DetectMIME(file)
	switch {
	case mimeType == "application/pdf":
		pdfText, err := n.NormalizePDF(file.Data)
		if err != nil {
			return nil, err
		}
		req.InputType = model.InputPDF
		req.PrimaryText = pdfText
		if text != "" {
			req.PrimaryText = "User note: " + text + "\n\n" + pdfText
		}

	case strings.HasPrefix(mimeType, "image/"):
		payload, err := n.NormalizeImage(file.Data, mimeType)
		if err != nil {
			return nil, err
		}
		req.InputType = model.InputImage
		req.Media = payload
		req.PrimaryText = text

	default:
		return nil, apperr.Newf(apperr.KindMedia, "media.normalize", "%w %s", apperr.ErrUnsupported, mimeType)
	}

	return req, nil
}

// NormalizePDF extracts bounded text from a PDF document
func (n *Normalizer) NormalizePDF(data []byte) (string, error) {
	if n.maxPDFBytes > 0 && int64(len(data)) > n.maxPDFBytes {
		return "", apperr.Newf(apperr.KindMedia, "media.pdf", "%w: PDF is larger than %d bytes", apperr.ErrTooLarge, n.maxPDFBytes)
	}

	src, err := n.open(data)
	if err != nil {
		return "", apperr.New(apperr.KindMedia, "media.pdf", err)
	}

	text, err := ExtractText(src, n.maxPages)
	if err != nil {
		return "", apperr.New(apperr.KindMedia, "media.pdf", err)
	}
	return text, nil
}

// NormalizeImage wraps image bytes for inline transmission without recompression
func (n *Normalizer) NormalizeImage(data []byte, mimeType string) (*model.MediaPayload, error) {
	if n.maxImageBytes > 0 && int64(len(data)) > n.maxImageBytes {
		return nil, apperr.Newf(apperr.KindMedia, "media.image", "%w: image is larger than %d bytes", apperr.ErrTooLarge, n.maxImageBytes)
	}
	return &model.MediaPayload{Data: data, MimeType: mimeType}, nil
}

// DetectMIME returns the file's MIME type: the declared type if present, then
// the extension, then content sniffing
func DetectMIME(file *File) string {
	if t := baseMIME(file.MimeType); t != "" && t != "application/octet-stream" {
		return t
	}
	if ext := strings.ToLower(filepath.Ext(file.Name)); ext != "" {
		if t := baseMIME(mime.TypeByExtension(ext)); t != "" {
			return t
		}
	}
	return baseMIME(mimetype.Detect(file.Data).String())
}

func baseMIME(t string) string {
	if t == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(t))
	}
	return mediaType
}

// String renders a one-line description for logs
func (f *File) String() string {
	return fmt.Sprintf("%s (%d bytes)", f.Name, len(f.Data))
}
