// Package worker runs diagnoses for many answer sets concurrently, e.g. when
// backfilling reports from exported questionnaires.
package worker

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/metalogic-lab/metadiag/internal/engine"
	"github.com/metalogic-lab/metadiag/internal/model"
)

// Entry is one named answer set in a batch file.
type Entry struct {
	Name    string        `yaml:"name"`
	Answers model.Answers `yaml:"answers"`
}

// Result pairs an entry with its report or failure.
type Result struct {
	Name    string
	Answers model.Answers
	Report  *model.DiagnosisReport
	Err     error
}

// BatchProcessor fans answer sets out to workers. A shared rate limiter keeps
// model-backed engines within their request budget.
type BatchProcessor struct {
	engine  engine.Engine
	workers int
	limiter *rate.Limiter
}

// NewBatchProcessor creates a processor with the given worker count and rate
// limit.
func NewBatchProcessor(e engine.Engine, workers int, requestsPerSecond float64, burst int) *BatchProcessor {
	if workers <= 0 {
		workers = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &BatchProcessor{
		engine:  e,
		workers: workers,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// LoadEntries reads a YAML batch file: a list of {name, answers} entries.
// Unnamed entries get positional names.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode batch file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("batch file %s contains no entries", path)
	}

	for i := range entries {
		if entries[i].Name == "" {
			entries[i].Name = fmt.Sprintf("case-%d", i+1)
		}
	}
	return entries, nil
}

// ProcessFile loads a batch file and processes every entry.
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]Result, error) {
	entries, err := LoadEntries(path)
	if err != nil {
		return nil, err
	}
	return b.Process(ctx, entries), nil
}

// Process runs every entry through the engine, preserving input order in the
// results. Incomplete answer sets fail their own entry without aborting the
// batch.
func (b *BatchProcessor) Process(ctx context.Context, entries []Entry) []Result {
	results := make([]Result, len(entries))

	type job struct {
		index int
		entry Entry
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = b.run(ctx, j.entry)
			}
		}()
	}

	for i, e := range entries {
		jobs <- job{index: i, entry: e}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (b *BatchProcessor) run(ctx context.Context, e Entry) Result {
	res := Result{Name: e.Name, Answers: e.Answers}

	if err := model.ValidateAnswers(e.Answers); err != nil {
		res.Err = fmt.Errorf("invalid answers: %w", err)
		return res
	}
	if err := b.limiter.Wait(ctx); err != nil {
		res.Err = fmt.Errorf("%w: %v", engine.ErrAnalysisUnavailable, err)
		return res
	}

	report, err := b.engine.Analyze(ctx, e.Answers.Clone())
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = report
	return res
}
