package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCSConfig holds the connection info for Google Cloud Storage.
type GCSConfig struct {
	CredentialsFile string // service account key file
	CredentialsJSON string // service account key contents, wins over the file
	Endpoint        string // JSON API base path override, e.g. an emulator
	Anonymous       bool   // skip auth entirely (emulators, tests)
}

// GCSBackend implements Backend on the GCS JSON API.
type GCSBackend struct {
	srv *gcs.Service
}

// NewGCSBackend builds a client from explicit service account credentials,
// falling back to Application Default Credentials.
func NewGCSBackend(ctx context.Context, cfg GCSConfig) (*GCSBackend, error) {
	opts, err := gcsClientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	srv, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create storage client: %w", err)
	}

	return &GCSBackend{srv: srv}, nil
}

func gcsClientOptions(ctx context.Context, cfg GCSConfig) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	if cfg.Anonymous {
		return append(opts, option.WithoutAuthentication()), nil
	}

	credentialsJSON := []byte(cfg.CredentialsJSON)
	if len(credentialsJSON) == 0 && cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file %s: %w", cfg.CredentialsFile, err)
		}
		credentialsJSON = data
	}

	var client *http.Client
	if len(credentialsJSON) > 0 {
		config, err := google.JWTConfigFromJSON(credentialsJSON, gcs.DevstorageReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
		}
		client = config.Client(ctx)
	} else {
		var err error
		client, err = google.DefaultClient(ctx, gcs.DevstorageReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("unable to find default credentials: %w", err)
		}
	}

	return append(opts, option.WithHTTPClient(client)), nil
}

// BucketExists returns ErrBucketNotFound for a 404 and the raw error for
// anything else (auth, network).
func (b *GCSBackend) BucketExists(ctx context.Context, bucket string) error {
	_, err := b.srv.Buckets.Get(bucket).Fields("name").Context(ctx).Do()
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("gs://%s: %w", bucket, ErrBucketNotFound)
	}
	return fmt.Errorf("gcs get bucket %s failed: %w", bucket, err)
}

// ListPage fetches a single page of objects under opts.Prefix.
func (b *GCSBackend) ListPage(ctx context.Context, bucket string, opts ListOptions) (*ListPage, error) {
	call := b.srv.Objects.List(bucket).
		Prefix(opts.Prefix).
		Fields("nextPageToken", "items(bucket,name)").
		Context(ctx)
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.PageSize > 0 {
		call = call.MaxResults(opts.PageSize)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("gcs list %s failed: %w", bucket, err)
	}

	page := &ListPage{
		Items:         make([]ObjectRef, 0, len(res.Items)),
		NextPageToken: res.NextPageToken,
	}
	for _, obj := range res.Items {
		ref := ObjectRef{Bucket: obj.Bucket, Name: obj.Name}
		if ref.Bucket == "" {
			ref.Bucket = bucket
		}
		page.Items = append(page.Items, ref)
	}
	return page, nil
}

// DeleteObject removes a single object.
func (b *GCSBackend) DeleteObject(ctx context.Context, obj ObjectRef) error {
	if err := b.srv.Objects.Delete(obj.Bucket, obj.Name).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", obj.Name, obj.Bucket, err)
	}
	return nil
}

var _ Backend = (*GCSBackend)(nil)
