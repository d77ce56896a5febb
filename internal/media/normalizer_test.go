package media

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/model"
)

// fakePDF implements PDFSource with fixed page texts
type fakePDF struct {
	pages []string
	err   error
	reads []int
}

func (f *fakePDF) NumPage() int {
	return len(f.pages)
}

func (f *fakePDF) PageText(i int) (string, error) {
	f.reads = append(f.reads, i)
	if f.err != nil {
		return "", f.err
	}
	return f.pages[i-1], nil
}

func pages(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("text of page %d", i+1)
	}
	return out
}

func newTestNormalizer(src *fakePDF) *Normalizer {
	return NewNormalizer(model.DefaultConfig().Media).WithPDFOpener(func(data []byte) (PDFSource, error) {
		return src, nil
	})
}

func TestExtractText_ShortDocument(t *testing.T) {
	src := &fakePDF{pages: pages(3)}

	text, err := ExtractText(src, 10)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	want := "[Page 1]\ntext of page 1\n\n[Page 2]\ntext of page 2\n\n[Page 3]\ntext of page 3"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
	if strings.Contains(text, "Truncated") {
		t.Error("did not expect truncation notice")
	}
}

func TestExtractText_TruncatesAfterTenPages(t *testing.T) {
	for _, total := range []int{11, 25, 400} {
		t.Run(fmt.Sprintf("%d pages", total), func(t *testing.T) {
			src := &fakePDF{pages: pages(total)}

			text, err := ExtractText(src, 10)
			if err != nil {
				t.Fatalf("ExtractText: %v", err)
			}

			if !strings.HasSuffix(text, TruncationNotice(10, total)) {
				t.Errorf("expected truncation notice, got tail %q", text[len(text)-60:])
			}
			if len(src.reads) != 10 {
				t.Fatalf("expected 10 page reads, got %d", len(src.reads))
			}
			last := -1
			for i := 1; i <= 10; i++ {
				idx := strings.Index(text, fmt.Sprintf("[Page %d]\n", i))
				if idx < 0 {
					t.Fatalf("missing marker for page %d", i)
				}
				if idx <= last {
					t.Errorf("page %d out of order", i)
				}
				last = idx
			}
			if strings.Contains(text, "[Page 11]") {
				t.Error("page 11 should not be extracted")
			}
		})
	}
}

func TestExtractText_EmptyScan(t *testing.T) {
	src := &fakePDF{pages: []string{"", "   \n\t", ""}}

	_, err := ExtractText(src, 10)
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}

func TestExtractText_NoPages(t *testing.T) {
	_, err := ExtractText(&fakePDF{}, 10)
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}

func TestNormalize_EmptyPDFIsMediaError(t *testing.T) {
	n := newTestNormalizer(&fakePDF{pages: []string{" ", ""}})

	_, err := n.Normalize("", &File{Name: "scan.pdf", Data: []byte("%PDF-1.4")}, model.ModeStandard)
	if apperr.KindOf(err) != apperr.KindMedia {
		t.Fatalf("expected media error, got %v", err)
	}
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent in chain, got %v", err)
	}
}

func TestNormalize_PDFPageError(t *testing.T) {
	n := newTestNormalizer(&fakePDF{pages: pages(2), err: errors.New("corrupt xref")})

	_, err := n.Normalize("", &File{Name: "doc.pdf", Data: []byte("%PDF-1.4")}, model.ModeStandard)
	if apperr.KindOf(err) != apperr.KindMedia {
		t.Fatalf("expected media error, got %v", err)
	}
}

func TestNormalize_PDFWithNote(t *testing.T) {
	n := newTestNormalizer(&fakePDF{pages: pages(1)})

	req, err := n.Normalize("is this accurate?", &File{Name: "doc.pdf", Data: []byte("%PDF-1.4")}, model.ModeDeep)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if req.InputType != model.InputPDF {
		t.Errorf("InputType = %s", req.InputType)
	}
	if !strings.HasPrefix(req.PrimaryText, "User note: is this accurate?") {
		t.Errorf("unexpected text %q", req.PrimaryText)
	}
	if req.Mode != model.ModeDeep {
		t.Errorf("Mode = %s", req.Mode)
	}
	if req.Label != "doc.pdf" {
		t.Errorf("Label = %s", req.Label)
	}
}

func TestNormalize_UnreadablePDF(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Media)

	_, err := n.Normalize("", &File{Name: "broken.pdf", Data: []byte("not a pdf at all")}, model.ModeStandard)
	if apperr.KindOf(err) != apperr.KindMedia {
		t.Errorf("expected media error for garbage PDF, got %v", err)
	}
	if msg := apperr.UserMessage(err); msg != "Could not read the attached file. It may be damaged or password protected." {
		t.Errorf("parser detail must not reach the user, got %q", msg)
	}
}

func TestNormalize_Image(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Media)
	data := []byte("\x89PNG\r\n\x1a\n0000")

	req, err := n.Normalize("caption text", &File{Name: "photo.png", Data: data}, model.ModeStandard)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if req.Media == nil {
		t.Fatal("expected media payload")
	}
	if req.Media.MimeType != "image/png" {
		t.Errorf("MimeType = %s", req.Media.MimeType)
	}
	if string(req.Media.Data) != string(data) {
		t.Error("image bytes must be passed through unchanged")
	}
	if req.PrimaryText != "caption text" {
		t.Errorf("PrimaryText = %q", req.PrimaryText)
	}
}

func TestNormalize_ImageTooLarge(t *testing.T) {
	cfg := model.DefaultConfig().Media
	cfg.MaxImageBytes = 4
	n := NewNormalizer(cfg)

	_, err := n.Normalize("", &File{Name: "big.jpg", Data: []byte("0123456789")}, model.ModeStandard)
	if apperr.KindOf(err) != apperr.KindMedia {
		t.Errorf("expected media error, got %v", err)
	}
	if !errors.Is(err, apperr.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge in chain, got %v", err)
	}
}

func TestNormalize_UnsupportedFile(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Media)

	_, err := n.Normalize("", &File{Name: "notes.zip", Data: []byte("PK\x03\x04")}, model.ModeStandard)
	if apperr.KindOf(err) != apperr.KindMedia {
		t.Errorf("expected media error, got %v", err)
	}
	if !errors.Is(err, apperr.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported in chain, got %v", err)
	}
}

func TestNormalize_EmptySubmission(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Media)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := n.Normalize(text, nil, model.ModeStandard)
		if apperr.KindOf(err) != apperr.KindInput {
			t.Errorf("Normalize(%q): expected input error, got %v", text, err)
		}
	}

	_, err := n.Normalize("", &File{Name: "empty.png"}, model.ModeStandard)
	if apperr.KindOf(err) != apperr.KindInput {
		t.Errorf("expected input error for empty file, got %v", err)
	}
}

func TestNormalize_URLText(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Media)

	req, err := n.Normalize("  https://example.com/story?id=1  ", nil, "")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !req.IsURL || req.InputType != model.InputURL {
		t.Errorf("expected URL classification, got IsURL=%v type=%s", req.IsURL, req.InputType)
	}
	if req.Mode != model.ModeStandard {
		t.Errorf("expected default mode, got %s", req.Mode)
	}
}

func TestIsBareURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/a/b?c=d#e", true},
		{"http://x", true},
		{"https://example.com/path\nmore", true},
		{" https://example.com", false},
		{"https://example.com ", false},
		{"see https://example.com", false},
		{"https://example.com and more", false},
		{`https://example.com/"quoted"`, false},
		{"HTTPS://EXAMPLE.COM", false},
		{"ftp://example.com", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsBareURL(tt.in); got != tt.want {
			t.Errorf("IsBareURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		file File
		want string
	}{
		{File{Name: "a.pdf"}, "application/pdf"},
		{File{Name: "A.JPG"}, "image/jpeg"},
		{File{Name: "upload", MimeType: "image/webp"}, "image/webp"},
		{File{Name: "upload", MimeType: "image/png; charset=binary"}, "image/png"},
		{File{Name: "upload", Data: []byte("%PDF-1.7\n")}, "application/pdf"},
		{File{Name: "upload", MimeType: "application/octet-stream", Data: []byte("\x89PNG\r\n\x1a\n")}, "image/png"},
	}

	for _, tt := range tests {
		if got := DetectMIME(&tt.file); got != tt.want {
			t.Errorf("DetectMIME(%+v) = %q, want %q", tt.file.Name, got, tt.want)
		}
	}
}
