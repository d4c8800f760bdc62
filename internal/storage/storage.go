// Package storage fetches document bytes from Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// ContentProvider fetches raw document bytes by storage URI.
type ContentProvider interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// GCSProvider is the ContentProvider backed by Google Cloud Storage.
// It assumes Application Default Credentials are configured.
type GCSProvider struct {
	client *storage.Client
}

// NewGCSProvider creates a provider with a shared storage client.
func NewGCSProvider(ctx context.Context) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSProvider{client: client}, nil
}

// Fetch downloads the object bytes for the given gs:// URI.
func (p *GCSProvider) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := p.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// Close releases the underlying storage client.
func (p *GCSProvider) Close() error {
	return p.client.Close()
}

// ParseURI splits a gs://bucket/path URI into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Filename extracts the base filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
