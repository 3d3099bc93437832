package storage

import (
	"context"
	"errors"
)

// ErrBucketNotFound is returned by BucketExists when the bucket is missing.
var ErrBucketNotFound = errors.New("bucket not found")

// ObjectRef is the identity needed to delete an object.
type ObjectRef struct {
	Bucket string
	Name   string
}

// ListOptions selects one page of a prefix listing.
type ListOptions struct {
	Prefix    string
	PageToken string // empty on the first call
	PageSize  int64  // zero uses the backend default
}

// ListPage is one listing response. An empty NextPageToken means there are
// no further pages; an empty Items slice alone does not.
type ListPage struct {
	Items         []ObjectRef
	NextPageToken string
}

// Backend captures the bucket operations the cleaner needs. Implementations
// must be safe for concurrent use.
type Backend interface {
	BucketExists(ctx context.Context, bucket string) error
	ListPage(ctx context.Context, bucket string, opts ListOptions) (*ListPage, error)
	DeleteObject(ctx context.Context, obj ObjectRef) error
}
