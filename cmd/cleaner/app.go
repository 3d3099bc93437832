package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/cromwell-cleaner/internal/config"
	"github.com/andresuchdata/cromwell-cleaner/internal/locator"
	"github.com/andresuchdata/cromwell-cleaner/internal/pipeline"
	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
	"github.com/andresuchdata/cromwell-cleaner/pkg/logger"
)

// backendFactory builds the storage backend for a parsed locator. Tests swap
// it for an in-memory backend.
type backendFactory func(ctx context.Context, c *cli.Context, cfg *config.Config, loc locator.Locator) (storage.Backend, error)

func newApp(cfg *config.Config) *cli.App {
	return buildApp(cfg, newBackend, os.Stdout)
}

func buildApp(cfg *config.Config, makeBackend backendFactory, report io.Writer) *cli.App {
	return &cli.App{
		Name:    "cromwell-cleaner",
		Usage:   "Deletes extraneous Cromwell files from a cloud storage path",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bucket",
				Aliases:  []string{"b"},
				Usage:    "Path to clean, as gs://bucket/folder/ or s3://bucket/folder/",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Dry run, don't actually delete any files",
				Value: false,
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Usage:   "Maximum number of delete requests in flight",
				Value:   cfg.Cleaner.Concurrency,
			},
			&cli.IntFlag{
				Name:  "page-workers",
				Usage: "Maximum number of listing pages processed at once",
				Value: cfg.Cleaner.PageWorkers,
			},
			&cli.Int64Flag{
				Name:  "page-size",
				Usage: "Objects requested per listing call",
				Value: cfg.Cleaner.PageSize,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: cfg.Log.Level,
			},
			&cli.StringFlag{
				Name:  "gcs-credentials",
				Usage: "Service account key file; Application Default Credentials when empty",
				Value: cfg.GCS.CredentialsFile,
			},
			&cli.StringFlag{
				Name:  "s3-endpoint",
				Usage: "S3-compatible endpoint for s3:// paths",
				Value: cfg.S3.Endpoint,
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Action: func(c *cli.Context) error {
			return runClean(c, cfg, makeBackend, report)
		},
	}
}

func runClean(c *cli.Context, cfg *config.Config, makeBackend backendFactory, report io.Writer) error {
	loc, err := locator.Parse(c.String("bucket"))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	ctx := c.Context
	backend, err := makeBackend(ctx, c, cfg, loc)
	if err != nil {
		return fmt.Errorf("storage client: %w", err)
	}

	orchestrator := pipeline.NewOrchestrator(backend, pipeline.Options{
		DryRun:      c.Bool("dry-run"),
		Concurrency: c.Int("concurrency"),
		PageWorkers: c.Int("page-workers"),
		PageSize:    c.Int64("page-size"),
		Report:      report,
	})

	if _, err := orchestrator.Run(ctx, loc); err != nil {
		return err
	}
	return nil
}

func newBackend(ctx context.Context, c *cli.Context, cfg *config.Config, loc locator.Locator) (storage.Backend, error) {
	switch loc.Scheme {
	case locator.SchemeS3:
		return storage.NewS3Backend(storage.S3Config{
			Endpoint:  c.String("s3-endpoint"),
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return storage.NewGCSBackend(ctx, storage.GCSConfig{
			CredentialsFile: c.String("gcs-credentials"),
			CredentialsJSON: cfg.GCS.CredentialsJSON,
			Endpoint:        cfg.GCS.Endpoint,
			Anonymous:       cfg.GCS.Anonymous,
		})
	}
}
