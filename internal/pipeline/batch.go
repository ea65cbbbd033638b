package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is the work done for one page URL by a BatchProcessor.
type Task func(ctx context.Context, url string) error

// BatchResult is the outcome of a Task for one URL.
type BatchResult struct {
	URL     string
	Err     error
	Elapsed time.Duration
}

// BatchProcessor runs a task for many page URLs concurrently.
type BatchProcessor struct {
	task Task

	// concurrency is the maximum number of tasks running at once.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent tasks.
// Non-positive values keep the default of 4.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor running task.
func NewBatchProcessor(task Task, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		task:        task,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// Concurrency returns the configured concurrency limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// ProcessBatch runs the task for every URL and returns the results in the
// order of urls. Task failures are reported in the results and do not stop
// other tasks; the returned error is only set when ctx ends the batch.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(r BatchResult, i int) {
		results[i] = r
	})
	return results, err
}

// ProcessBatchWithCallback runs the task for every URL and calls callback
// with each result as it completes. callback is called from the task's
// goroutine; the index refers to urls.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, urls []string, callback func(result BatchResult, index int)) error {
	bp.logger.Debug("starting batch",
		"total", len(urls),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				callback(BatchResult{URL: url, Err: err}, i)
				return err
			}

			taskStart := time.Now()
			err := bp.task(ctx, url)
			if err != nil {
				bp.logger.Warn("batch task failed", "url", url, "error", err)
			}
			callback(BatchResult{URL: url, Err: err, Elapsed: time.Since(taskStart)}, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Debug("batch complete",
		"total", len(urls),
		"elapsed", time.Since(startTime),
	)
	return err
}
