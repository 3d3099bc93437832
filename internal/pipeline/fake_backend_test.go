package pipeline

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
)

// fakeBackend is an in-memory storage.Backend. Pages are served in order;
// hooks override individual calls.
type fakeBackend struct {
	pages []storage.ListPage

	BucketExistsFunc func(ctx context.Context, bucket string) error
	ListPageFunc     func(ctx context.Context, call int, opts storage.ListOptions) (*storage.ListPage, error)
	DeleteObjectFunc func(ctx context.Context, obj storage.ObjectRef) error

	mu        sync.Mutex
	listCalls []storage.ListOptions
	deletes   []storage.ObjectRef

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (f *fakeBackend) BucketExists(ctx context.Context, bucket string) error {
	if f.BucketExistsFunc != nil {
		return f.BucketExistsFunc(ctx, bucket)
	}
	return nil
}

func (f *fakeBackend) ListPage(ctx context.Context, bucket string, opts storage.ListOptions) (*storage.ListPage, error) {
	f.mu.Lock()
	call := len(f.listCalls)
	f.listCalls = append(f.listCalls, opts)
	f.mu.Unlock()

	if f.ListPageFunc != nil {
		return f.ListPageFunc(ctx, call, opts)
	}
	page := f.pages[call]
	return &page, nil
}

func (f *fakeBackend) DeleteObject(ctx context.Context, obj storage.ObjectRef) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.deletes = append(f.deletes, obj)
	f.mu.Unlock()

	if f.DeleteObjectFunc != nil {
		return f.DeleteObjectFunc(ctx, obj)
	}
	return nil
}

func (f *fakeBackend) deletedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.deletes))
	for _, d := range f.deletes {
		names = append(names, d.Name)
	}
	return names
}

func (f *fakeBackend) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

// syncBuffer lets concurrent loggers write into one buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const workflowID = "b189154b-fd26-4ed1-a6f0-4f6191f1e820"

func ref(name string) storage.ObjectRef {
	return storage.ObjectRef{Bucket: "my-bucket", Name: name}
}

func artifact(shard, leaf string) storage.ObjectRef {
	return ref("my_folder/" + workflowID + "/call-foobar/shard-" + shard + "/" + leaf)
}
