package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

// Analyzer analyzes a single batch input (a text line or URL)
type Analyzer interface {
	AnalyzeInput(ctx context.Context, input string) (*model.AnalysisResult, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface
type AnalyzerFunc func(ctx context.Context, input string) (*model.AnalysisResult, error)

// AnalyzeInput calls f
func (f AnalyzerFunc) AnalyzeInput(ctx context.Context, input string) (*model.AnalysisResult, error) {
	return f(ctx, input)
}

// AnalysisJob represents one batch input
type AnalysisJob struct {
	Input    string
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	start := time.Now()
	result, err := j.Analyzer.AnalyzeInput(ctx, j.Input)
	return &AnalysisOutcome{
		Input:    j.Input,
		Result:   result,
		Error:    err,
		Duration: time.Since(start),
	}
}

// AnalysisOutcome represents the result of an analysis job
type AnalysisOutcome struct {
	Input    string
	Result   *model.AnalysisResult
	Error    error
	Duration time.Duration
}

// GetError returns the error from the analysis outcome
func (r *AnalysisOutcome) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many inputs concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// Process analyzes inputs concurrently and returns one outcome per input, in
// input order
func (b *BatchProcessor) Process(ctx context.Context, inputs []string) []*AnalysisOutcome {
	if len(inputs) == 0 {
		return []*AnalysisOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, input := range inputs {
		pool.Submit(&AnalysisJob{
			Input:    input,
			Analyzer: b.analyzer,
		})
	}

	results := pool.Wait()

	outcomes := make([]*AnalysisOutcome, len(inputs))
	for i, result := range results {
		if out, ok := result.(*AnalysisOutcome); ok {
			outcomes[i] = out
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("analysis did not run")
		}
		outcomes[i] = &AnalysisOutcome{Input: inputs[i], Error: err}
	}

	return outcomes
}

// ProcessFile reads inputs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalysisOutcome, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.Process(ctx, inputs), nil
}

// ReadInputsFromFile reads one input per line, skipping blank lines, "#"
// comments and duplicates
func ReadInputsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}
