package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/cromwell-cleaner/internal/config"
	"github.com/andresuchdata/cromwell-cleaner/internal/locator"
	"github.com/andresuchdata/cromwell-cleaner/internal/pipeline"
	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
)

const script = "runs/b189154b-fd26-4ed1-a6f0-4f6191f1e820/call-align/shard-3/script"

type memBackend struct {
	mu      sync.Mutex
	missing bool
	objects []string
	deleted []string
}

func (m *memBackend) BucketExists(ctx context.Context, bucket string) error {
	if m.missing {
		return fmt.Errorf("gs://%s: %w", bucket, storage.ErrBucketNotFound)
	}
	return nil
}

func (m *memBackend) ListPage(ctx context.Context, bucket string, opts storage.ListOptions) (*storage.ListPage, error) {
	page := &storage.ListPage{}
	for _, name := range m.objects {
		if strings.HasPrefix(name, opts.Prefix) {
			page.Items = append(page.Items, storage.ObjectRef{Bucket: bucket, Name: name})
		}
	}
	return page, nil
}

func (m *memBackend) DeleteObject(ctx context.Context, obj storage.ObjectRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, obj.Name)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:     config.LogConfig{Level: "error"},
		Cleaner: config.CleanerConfig{Concurrency: 4, PageWorkers: 2, PageSize: 100},
	}
}

func runApp(t *testing.T, backend *memBackend, args ...string) (string, *locator.Locator, error) {
	t.Helper()

	var got *locator.Locator
	factory := func(ctx context.Context, c *cli.Context, cfg *config.Config, loc locator.Locator) (storage.Backend, error) {
		got = &loc
		return backend, nil
	}

	report := &bytes.Buffer{}
	app := buildApp(testConfig(), factory, report)
	err := app.Run(append([]string{"cromwell-cleaner"}, args...))
	return report.String(), got, err
}

func TestApp_DryRun(t *testing.T) {
	backend := &memBackend{objects: []string{script, "runs/notes.txt"}}

	out, loc, err := runApp(t, backend, "--bucket", "gs://lab/runs/", "--dry-run")

	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, locator.Locator{Scheme: "gs", Bucket: "lab", Prefix: "runs/"}, *loc)
	assert.Equal(t, "Would delete the following objects:\ngs://lab/"+script+"\n", out)
	assert.Empty(t, backend.deleted)
}

func TestApp_Deletes(t *testing.T) {
	backend := &memBackend{objects: []string{script, "runs/notes.txt"}}

	out, _, err := runApp(t, backend, "-b", "gs://lab/runs/", "-c", "2")

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, []string{script}, backend.deleted)
}

func TestApp_InvalidLocator(t *testing.T) {
	backend := &memBackend{}

	_, loc, err := runApp(t, backend, "--bucket", "lab/runs/")

	require.Error(t, err)
	assert.ErrorIs(t, err, locator.ErrInvalidLocator)
	assert.Nil(t, loc, "no backend should be built for a bad locator")
}

func TestApp_BucketNotFound(t *testing.T) {
	backend := &memBackend{missing: true}

	_, _, err := runApp(t, backend, "--bucket", "gs://lab/runs/")

	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrBucketNotFound)
}
