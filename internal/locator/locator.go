// Package locator parses bucket locators such as gs://bucket/folder/.
package locator

import (
	"errors"
	"fmt"
	"strings"
)

const (
	SchemeGCS = "gs"
	SchemeS3  = "s3"
)

// ErrInvalidLocator is returned for input that is not scheme://bucket/folder.
var ErrInvalidLocator = errors.New("invalid locator")

// Locator is a bucket plus the prefix to scan inside it.
type Locator struct {
	Scheme string
	Bucket string
	Prefix string
}

// Parse splits raw into scheme, bucket and prefix. The prefix is kept
// verbatim, trailing slash included. A bare bucket is rejected because the
// cleaner only ever sweeps a folder.
func Parse(raw string) (Locator, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Locator{}, fmt.Errorf("%w: %q has no scheme prefix", ErrInvalidLocator, raw)
	}
	if scheme != SchemeGCS && scheme != SchemeS3 {
		return Locator{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocator, scheme)
	}

	bucket, prefix, ok := strings.Cut(rest, "/")
	if !ok || prefix == "" {
		return Locator{}, fmt.Errorf("%w: %q has no folder", ErrInvalidLocator, raw)
	}
	if bucket == "" {
		return Locator{}, fmt.Errorf("%w: %q has no bucket", ErrInvalidLocator, raw)
	}

	return Locator{Scheme: scheme, Bucket: bucket, Prefix: prefix}, nil
}

// URL renders an object in the same scheme the locator was given in.
func (l Locator) URL(name string) string {
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, name)
}

func (l Locator) String() string {
	return l.URL(l.Prefix)
}
