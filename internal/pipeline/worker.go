package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
	"github.com/andresuchdata/cromwell-cleaner/pkg/logger"
	"golang.org/x/sync/semaphore"
)

// Worker deletes already-matched objects. A single semaphore caps in-flight
// requests across every batch handed to the same Worker.
type Worker struct {
	backend storage.Backend
	sem     *semaphore.Weighted
}

// NewWorker creates a new deletion worker
func NewWorker(backend storage.Backend, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		backend: backend,
		sem:     semaphore.NewWeighted(int64(concurrency)),
	}
}

// DeleteAll issues one delete per object and returns once every request has
// finished. Failures are logged and counted; they never stop sibling deletes.
func (w *Worker) DeleteAll(ctx context.Context, objs []storage.ObjectRef) (deleted, failed int) {
	var (
		wg        sync.WaitGroup
		okCount   atomic.Int64
		failCount atomic.Int64
	)

	for i, obj := range objs {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			skipped := len(objs) - i
			logger.Log.Warn().
				Err(err).
				Str("bucket", obj.Bucket).
				Int("skipped", skipped).
				Msg("Deletion interrupted")
			failCount.Add(int64(skipped))
			break
		}

		wg.Add(1)
		go func(obj storage.ObjectRef) {
			defer func() {
				w.sem.Release(1)
				wg.Done()
			}()

			if err := w.deleteOne(ctx, obj); err != nil {
				failCount.Add(1)
				return
			}
			okCount.Add(1)
		}(obj)
	}

	wg.Wait()
	return int(okCount.Load()), int(failCount.Load())
}

func (w *Worker) deleteOne(ctx context.Context, obj storage.ObjectRef) error {
	if err := w.backend.DeleteObject(ctx, obj); err != nil {
		err = fmt.Errorf("%w: %w", ErrDeleteFailed, err)
		logger.Log.Error().
			Err(err).
			Str("bucket", obj.Bucket).
			Str("object", obj.Name).
			Msg("Error deleting object")
		return err
	}

	logger.Log.Debug().
		Str("bucket", obj.Bucket).
		Str("object", obj.Name).
		Msg("Deleted object")
	return nil
}
