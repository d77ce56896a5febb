package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/report"
	"github.com/spf13/viper"
)

const maxNameLen = 50

const banner = "═══════════════════════════════════════════════════════════"

// commandConfig loads the merged configuration and applies global flags
func commandConfig() (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// writeArtifacts writes <name>.json and <name>.pdf, plus <name>.md when
// markdown is set, into dir. Returns the written paths.
func writeArtifacts(dir, name string, r *model.AnalysisResult, markdown bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	base := filepath.Join(dir, name)

	var js bytes.Buffer
	if err := report.WriteJSON(&js, r); err != nil {
		return nil, err
	}
	pdf, err := report.Paginate(r)
	if err != nil {
		return nil, fmt.Errorf("render PDF: %w", err)
	}

	files := []struct {
		path string
		data []byte
	}{
		{base + ".json", js.Bytes()},
		{base + ".pdf", pdf},
	}
	if markdown {
		files = append(files, struct {
			path string
			data []byte
		}{base + ".md", []byte(report.Markdown(r))})
	}

	var written []string
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.path, err)
		}
		written = append(written, f.path)
	}
	return written, nil
}

// sanitizeFilename turns arbitrary input into a short file name stem.
// Letters and digits are kept; every other run becomes a single "-".
func sanitizeFilename(s string) string {
	// Drop the scheme so URLs start with their host
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	name := strings.Trim(b.String(), "-")
	if len(name) > maxNameLen {
		name = strings.TrimRight(name[:maxNameLen], "-")
	}
	if name == "" {
		return "report"
	}
	return name
}

// printSummary writes the verdict overview for one outcome
func printSummary(w io.Writer, out *pipeline.Outcome) {
	r := out.Result

	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "  Verdict:      %s (%.0f%%)\n", r.OverallVerdict.Label(), r.OverallConfidence*100)
	fmt.Fprintf(w, "  Claims:       %d\n", len(r.Claims))
	if r.Meta.Model != "" {
		fmt.Fprintf(w, "  Model:        %s\n", r.Meta.Model)
	}
	fmt.Fprintf(w, "  Support:      %d/100 (%s confidence)\n", out.Support.Index, out.Support.Confidence)
	if out.Cached {
		fmt.Fprintf(w, "  Source:       cache\n")
	}
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)

	for i, c := range r.Claims {
		fmt.Fprintf(w, "  %d. [%s %.0f%%] %s\n", i+1, c.Verdict.Label(), c.VerdictConfidence*100, c.ClaimText)
	}
	if len(r.Claims) > 0 {
		fmt.Fprintln(w)
	}

	if s := strings.TrimSpace(r.ExplainableSummary); s != "" {
		fmt.Fprintf(w, "  %s\n\n", s)
	}

	for _, sw := range r.SafetyWarnings {
		fmt.Fprintf(w, "  ⚠ %s: %s\n", sw.Category, sw.Message)
	}
	for _, v := range out.Warnings {
		fmt.Fprintf(w, "  ⚠ %s\n", v.String())
	}
	for _, p := range out.LinkProblems {
		fmt.Fprintf(w, "  ✗ %s\n", p)
	}
}
