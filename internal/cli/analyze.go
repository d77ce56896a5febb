package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/media"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyzeFile     string
	analyzeMode     string
	analyzeName     string
	analyzeOutDir   string
	analyzeMarkdown bool
	analyzeTimeout  time.Duration
	analyzeProvider string
	noCache         bool
	fetchPage       bool
	checkLinks      bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text or URL]",
	Short: "Fact-check text, a URL, an image or a PDF",
	Long: `Analyze sends one submission to the generation service and writes the
report as JSON and PDF.

Text and URLs are passed as arguments; images and PDFs with --file.
Both may be combined, in which case the text gives context for the file.

Example:
  factlens analyze "The Great Wall of China is visible from space"
  factlens analyze https://example.com/story --fetch --links
  factlens analyze --file screenshot.png --mode deep --md`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "image or PDF to analyze")
	analyzeCmd.Flags().StringVarP(&analyzeMode, "mode", "m", "standard", "analysis mode (standard, deep)")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "report file name without extension (default: derived from input)")
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "output-dir", "o", "", "output directory (default: output.dir)")
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "md", false, "also write a Markdown report")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 3*time.Minute, "overall timeout")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "generation provider (gemini, openai, anthropic)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	analyzeCmd.Flags().BoolVar(&fetchPage, "fetch", false, "prefetch the page behind a bare URL")
	analyzeCmd.Flags().BoolVar(&checkLinks, "links", false, "check evidence links after analysis")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))

	var file *media.File
	if analyzeFile != "" {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		file = &media.File{Name: filepath.Base(analyzeFile), Data: data}
	}
	if text == "" && file == nil {
		return fmt.Errorf("nothing to analyze: pass text, a URL, or --file")
	}

	mode, err := model.ParseMode(analyzeMode)
	if err != nil {
		return err
	}

	cfg, err := commandConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if analyzeOutDir != "" {
		cfg.Output.Dir = analyzeOutDir
	}
	if analyzeMarkdown {
		cfg.Output.Markdown = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing (%s mode)...\n", mode)
	}

	out, err := a.pipeline.Analyze(ctx, pipeline.Submission{Text: text, File: file, Mode: mode})
	if err != nil {
		a.logger.Debug("analysis failed", zap.Error(err))
		return errors.New(apperr.UserMessage(err))
	}

	name := analyzeName
	if name == "" {
		name = reportName(text, file)
	}
	written, err := writeArtifacts(cfg.Output.Dir, sanitizeFilename(name), out.Result, cfg.Output.Markdown)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, out)
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}

// applyRunFlags copies the per-run flags shared by analyze and batch onto cfg
func applyRunFlags(cmd *cobra.Command, cfg *model.Config) {
	if analyzeProvider != "" {
		cfg.LLM.Provider = analyzeProvider
		if key := apiKeyFromEnv(analyzeProvider); key != "" {
			cfg.LLM.APIKey = key
		}
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cmd.Flags().Changed("fetch") {
		cfg.Fetch.Enabled = fetchPage
	}
	if cmd.Flags().Changed("links") {
		cfg.Links.Enabled = checkLinks
	}
}

// reportName picks a file name stem: the file name, else the text
func reportName(text string, file *media.File) string {
	if file != nil {
		return strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	}
	return text
}
