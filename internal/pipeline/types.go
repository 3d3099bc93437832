package pipeline

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
	"time"
)

var (
	// ErrBucketNotFound aborts a run whose bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrBackendUnavailable aborts a run when the bucket check or a listing
	// call fails for any reason other than a missing bucket.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	// ErrDeleteFailed wraps a single object's delete error. It is logged,
	// never returned from Run.
	ErrDeleteFailed = errors.New("delete failed")
	// ErrListerExhausted is returned by Lister.Next after the last page.
	ErrListerExhausted = errors.New("listing exhausted")
)

// Options holds configuration for a cleaning run
type Options struct {
	DryRun      bool
	Concurrency int       // Max in-flight delete requests, shared by all pages
	PageWorkers int       // Max pages being filtered/deleted concurrently
	PageSize    int64     // maxResults hint per listing call, 0 for backend default
	Report      io.Writer // Dry-run report stream
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Concurrency: 64,
		PageWorkers: 4,
		PageSize:    1000,
		Report:      os.Stdout,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Concurrency < 1 {
		o.Concurrency = def.Concurrency
	}
	if o.PageWorkers < 1 {
		o.PageWorkers = def.PageWorkers
	}
	if o.PageSize < 0 {
		o.PageSize = 0
	}
	if o.Report == nil {
		o.Report = def.Report
	}
	return o
}

// Summary is a snapshot of one run's counters. Nothing is persisted.
type Summary struct {
	Pages    int64
	Listed   int64
	Matched  int64
	Deleted  int64
	Failed   int64
	Duration time.Duration
}

// runStats is updated concurrently by page tasks.
type runStats struct {
	pages   atomic.Int64
	listed  atomic.Int64
	matched atomic.Int64
	deleted atomic.Int64
	failed  atomic.Int64
}

func (s *runStats) snapshot(started time.Time) Summary {
	return Summary{
		Pages:    s.pages.Load(),
		Listed:   s.listed.Load(),
		Matched:  s.matched.Load(),
		Deleted:  s.deleted.Load(),
		Failed:   s.failed.Load(),
		Duration: time.Since(started),
	}
}
