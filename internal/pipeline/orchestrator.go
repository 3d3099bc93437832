package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/cromwell-cleaner/internal/locator"
	"github.com/andresuchdata/cromwell-cleaner/internal/matcher"
	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
	"github.com/andresuchdata/cromwell-cleaner/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Orchestrator drives one sweep: bucket check, paginated listing, and a
// filter+delete task per page that overlaps with fetching the next page.
type Orchestrator struct {
	backend storage.Backend
	opts    Options
	worker  *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(backend storage.Backend, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		backend: backend,
		opts:    opts,
		worker:  NewWorker(backend, opts.Concurrency),
	}
}

// Run sweeps loc. It returns only after every dispatched page task and every
// delete inside it has finished, even when listing fails part way. Delete
// failures are logged and counted in the Summary but never returned.
func (o *Orchestrator) Run(ctx context.Context, loc locator.Locator) (Summary, error) {
	started := time.Now()
	stats := &runStats{}

	logger.Log.Info().
		Str("bucket", loc.Bucket).
		Str("prefix", loc.Prefix).
		Bool("dry_run", o.opts.DryRun).
		Msg("Listing objects in bucket")

	if err := o.backend.BucketExists(ctx, loc.Bucket); err != nil {
		if errors.Is(err, storage.ErrBucketNotFound) {
			return stats.snapshot(started), fmt.Errorf("%w: %w", ErrBucketNotFound, err)
		}
		return stats.snapshot(started), fmt.Errorf("%w: checking bucket %s: %w", ErrBackendUnavailable, loc.Bucket, err)
	}

	report := newReportWriter(o.opts.Report, loc.Scheme)
	if o.opts.DryRun {
		if err := report.header(); err != nil {
			logger.Log.Warn().Err(err).Msg("failed to write report header")
		}
	}

	var g errgroup.Group
	g.SetLimit(o.opts.PageWorkers)

	lister := NewLister(o.backend, loc, o.opts.PageSize)
	var listErr error
	for pageNum := 1; !lister.Exhausted(); pageNum++ {
		page, err := lister.Next(ctx)
		if err != nil {
			listErr = err
			break
		}
		stats.pages.Add(1)
		stats.listed.Add(int64(len(page.Items)))

		// Blocks while PageWorkers pages are still in flight.
		pageNum := pageNum
		g.Go(func() error {
			o.processPage(ctx, report, stats, pageNum, page)
			return nil
		})
	}

	// Page tasks never return errors; Wait is the join.
	_ = g.Wait()

	summary := stats.snapshot(started)
	event := logger.Log.Info()
	if listErr != nil {
		event = logger.Log.Error().Err(listErr)
	}
	event.
		Int64("pages", summary.Pages).
		Int64("listed", summary.Listed).
		Int64("matched", summary.Matched).
		Int64("deleted", summary.Deleted).
		Int64("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("Sweep finished")

	return summary, listErr
}

func (o *Orchestrator) processPage(ctx context.Context, report *reportWriter, stats *runStats, pageNum int, page *storage.ListPage) {
	matched := matcher.Filter(page.Items)
	stats.matched.Add(int64(len(matched)))

	logger.Log.Debug().
		Int("page", pageNum).
		Int("items", len(page.Items)).
		Int("matched", len(matched)).
		Msg("Processing page")

	if len(matched) == 0 {
		return
	}

	if o.opts.DryRun {
		if err := report.objects(matched); err != nil {
			logger.Log.Warn().Err(err).Int("page", pageNum).Msg("failed to write report")
		}
		return
	}

	deleted, failed := o.worker.DeleteAll(ctx, matched)
	stats.deleted.Add(int64(deleted))
	stats.failed.Add(int64(failed))
}
