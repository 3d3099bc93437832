package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config encapsulates the connection info for S3-compatible storage.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// S3Backend implements Backend for S3-compatible services.
type S3Backend struct {
	core *minio.Core
}

// NewS3Backend builds a new S3Backend on minio's low-level Core API, which
// exposes ListObjectsV2 continuation tokens directly.
func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "http://"), false
	}
	endpoint = strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/")

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create s3 client: %w", err)
	}

	return &S3Backend{core: core}, nil
}

// BucketExists reports ErrBucketNotFound when the bucket is missing.
func (b *S3Backend) BucketExists(ctx context.Context, bucket string) error {
	ok, err := b.core.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("s3 head bucket %s failed: %w", bucket, err)
	}
	if !ok {
		return fmt.Errorf("s3://%s: %w", bucket, ErrBucketNotFound)
	}
	return nil
}

// ListPage fetches a single ListObjectsV2 page under opts.Prefix.
func (b *S3Backend) ListPage(ctx context.Context, bucket string, opts ListOptions) (*ListPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := b.core.ListObjectsV2(bucket, opts.Prefix, "", opts.PageToken, "", int(opts.PageSize))
	if err != nil {
		return nil, fmt.Errorf("s3 list %s failed: %w", bucket, err)
	}

	page := &ListPage{Items: make([]ObjectRef, 0, len(res.Contents))}
	for _, obj := range res.Contents {
		page.Items = append(page.Items, ObjectRef{Bucket: bucket, Name: obj.Key})
	}
	if res.IsTruncated {
		page.NextPageToken = res.NextContinuationToken
	}
	return page, nil
}

// DeleteObject removes a single object.
func (b *S3Backend) DeleteObject(ctx context.Context, obj ObjectRef) error {
	if err := b.core.RemoveObject(ctx, obj.Bucket, obj.Name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", obj.Name, obj.Bucket, err)
	}
	return nil
}

var _ Backend = (*S3Backend)(nil)
