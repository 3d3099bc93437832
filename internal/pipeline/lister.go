package pipeline

import (
	"context"
	"fmt"

	"github.com/andresuchdata/cromwell-cleaner/internal/locator"
	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
)

// Lister walks a prefix one page at a time. It is Active until a page comes
// back without a continuation token, then Exhausted for good. Not safe for
// concurrent use; the orchestrator drives it from a single goroutine.
type Lister struct {
	backend   storage.Backend
	loc       locator.Locator
	pageSize  int64
	token     string
	pages     int
	exhausted bool
}

// NewLister creates a Lister positioned before the first page.
func NewLister(backend storage.Backend, loc locator.Locator, pageSize int64) *Lister {
	return &Lister{
		backend:  backend,
		loc:      loc,
		pageSize: pageSize,
	}
}

// Exhausted reports whether the last page has been returned.
func (l *Lister) Exhausted() bool {
	return l.exhausted
}

// Next fetches the page at the current cursor and advances it. An empty page
// with a token is a normal page; only a missing token ends the listing.
func (l *Lister) Next(ctx context.Context) (*storage.ListPage, error) {
	if l.exhausted {
		return nil, ErrListerExhausted
	}

	page, err := l.backend.ListPage(ctx, l.loc.Bucket, storage.ListOptions{
		Prefix:    l.loc.Prefix,
		PageToken: l.token,
		PageSize:  l.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s (page %d): %w", ErrBackendUnavailable, l.loc, l.pages+1, err)
	}

	l.pages++
	l.token = page.NextPageToken
	if l.token == "" {
		l.exhausted = true
	}
	return page, nil
}
