package pipeline

import (
	"bufio"
	"io"
	"sync"

	"github.com/andresuchdata/cromwell-cleaner/internal/locator"
	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
)

const dryRunHeader = "Would delete the following objects:"

// reportWriter serializes dry-run output from concurrent page tasks. Each
// page is written under one lock so its lines stay together.
type reportWriter struct {
	mu     sync.Mutex
	out    io.Writer
	scheme string
}

func newReportWriter(out io.Writer, scheme string) *reportWriter {
	return &reportWriter{out: out, scheme: scheme}
}

func (r *reportWriter) header() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := io.WriteString(r.out, dryRunHeader+"\n")
	return err
}

func (r *reportWriter) objects(objs []storage.ObjectRef) error {
	if len(objs) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := bufio.NewWriter(r.out)
	for _, obj := range objs {
		loc := locator.Locator{Scheme: r.scheme, Bucket: obj.Bucket}
		if _, err := w.WriteString(loc.URL(obj.Name) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
