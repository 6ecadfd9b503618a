// Package batch generates many articles concurrently on a bounded worker pool.
package batch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobpress/internal/model"
)

// Generator produces one document per descriptor.
type Generator interface {
	Generate(ctx context.Context, job model.JobDescriptor) (*model.Document, error)
}

// Result is the outcome of one batch entry, in input order.
type Result struct {
	Index int
	Topic string
	Doc   *model.Document
	Err   error
}

// Runner owns the batch loop: generate, archive and publish each descriptor.
type Runner struct {
	gen       Generator
	archive   model.ArticleStore
	publisher model.Publisher
	workers   int
	logger    *slog.Logger
}

// NewRunner creates a runner with at most workers generations in flight.
func NewRunner(gen Generator, archive model.ArticleStore, publisher model.Publisher, workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		gen:       gen,
		archive:   archive,
		publisher: publisher,
		workers:   workers,
		logger:    logger,
	}
}

// Run processes every job. A failing entry is recorded in its Result and does
// not stop the others. Run only returns an error when ctx is cancelled, in
// which case unstarted entries carry the context error.
func (r *Runner) Run(ctx context.Context, jobs []model.JobDescriptor) ([]Result, error) {
	start := time.Now()
	r.logger.Info("starting batch", "jobs", len(jobs), "workers", r.workers)

	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, job := range jobs {
		results[i] = Result{Index: i, Topic: job.Topic}
		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}
		g.Go(func() error {
			results[i].Doc, results[i].Err = r.runOne(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			r.logger.Error("batch entry failed", "index", res.Index, "topic", res.Topic, "error", res.Err)
		}
	}
	r.logger.Info("batch complete",
		"ok", len(jobs)-failed,
		"failed", failed,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return results, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, job model.JobDescriptor) (*model.Document, error) {
	doc, err := r.gen.Generate(ctx, job)
	if err != nil {
		return nil, err
	}
	// Archive failures are logged and do not fail the entry.
	if err := r.archive.Save(ctx, doc); err != nil {
		r.logger.Warn("archive save failed", "run_id", doc.RunID, "error", err)
	}
	if err := r.publisher.Publish(ctx, doc); err != nil {
		return doc, err
	}
	return doc, nil
}
