// Package gcs implements the storage backend on a Google Cloud Storage
// bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

type storageBackend struct {
	client *storage.Client
	bucket string
}

// New returns a StorageBackend writing into the named bucket. Credentials
// come from the ambient environment unless options override them.
func New(ctx context.Context, bucket string, opts ...option.ClientOption) (ports.StorageBackend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &storageBackend{client: client, bucket: bucket}, nil
}

func (b *storageBackend) Put(ctx context.Context, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	w := b.client.Bucket(b.bucket).Object(remotePath).NewWriter(ctx)
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish upload %s: %w", remotePath, err)
	}
	return nil
}

func (b *storageBackend) Get(ctx context.Context, remotePath, localPath string) error {
	r, err := b.client.Bucket(b.bucket).Object(remotePath).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", remotePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(localPath), err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return fmt.Errorf("download %s: %w", remotePath, err)
	}
	return dst.Close()
}

func (b *storageBackend) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := b.client.Bucket(b.bucket).Object(remotePath).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", remotePath, err)
}

func (b *storageBackend) List(ctx context.Context, remoteDir string) ([]string, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: remoteDir})
	var paths []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return paths, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", remoteDir, err)
		}
		paths = append(paths, attrs.Name)
	}
}
