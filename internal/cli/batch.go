package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ppiankov/factlens/internal/apperr"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchMode    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many texts or URLs from a file in parallel",
	Long: `Batch analyzes every line of the input file concurrently:
- One submission per line; blank lines and # comments are skipped
- Duplicate lines are analyzed once
- Each report is written as <n>-<name>.json and .pdf
- Failures are listed and do not stop the batch

Example:
  factlens batch claims.txt
  factlens batch urls.txt --concurrency 4 --output-dir ./reports --fetch
  factlens batch claims.txt --mode deep --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", min(runtime.NumCPU(), 4), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factlens-reports", "output directory for reports")
	batchCmd.Flags().StringVarP(&batchMode, "mode", "m", "standard", "analysis mode (standard, deep)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 20*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&analyzeMarkdown, "md", false, "also write Markdown reports")

	// Shared with analyze
	batchCmd.Flags().StringVar(&analyzeProvider, "provider", "", "generation provider (gemini, openai, anthropic)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	batchCmd.Flags().BoolVar(&fetchPage, "fetch", false, "prefetch the page behind bare URLs")
	batchCmd.Flags().BoolVar(&checkLinks, "links", false, "check evidence links after analysis")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	mode, err := model.ParseMode(batchMode)
	if err != nil {
		return err
	}

	cfg, err := commandConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if analyzeMarkdown {
		cfg.Output.Markdown = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "  FactLens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", mode)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	processor := worker.NewBatchProcessor(a.pipeline.Analyzer(mode), concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Processing inputs with %d workers...\n\n", concurrency)
	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	success, failure := 0, 0
	for i, outcome := range outcomes {
		label := model.EllipsizeLabel(outcome.Input)
		if outcome.Error != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", label, apperr.UserMessage(outcome.Error))
			continue
		}

		name := fmt.Sprintf("%03d-%s", i+1, sanitizeFilename(outcome.Input))
		if _, err := writeArtifacts(outputDir, name, outcome.Result, cfg.Output.Markdown); err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, err)
			continue
		}

		success++
		fmt.Fprintf(os.Stderr, "✓ %s: %s (%.0f%%, %v)\n", label,
			outcome.Result.OverallVerdict.Label(), outcome.Result.OverallConfidence*100,
			outcome.Duration.Round(time.Millisecond))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d inputs\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", success)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failure)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if success == 0 && failure > 0 {
		return fmt.Errorf("all %d inputs failed", failure)
	}
	return nil
}
