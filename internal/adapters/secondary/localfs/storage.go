// Package localfs implements the storage backend on the local filesystem.
package localfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

type storageBackend struct {
	root string
}

// New returns a StorageBackend rooted at dir. Remote paths are resolved
// relative to the root; the root is created if missing.
func New(root string) (ports.StorageBackend, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &storageBackend{root: root}, nil
}

func (b *storageBackend) resolve(remotePath string) string {
	return filepath.Join(b.root, filepath.FromSlash(remotePath))
}

func (b *storageBackend) Put(ctx context.Context, localPath, remotePath string) error {
	dst := b.resolve(remotePath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	return copyFile(localPath, dst)
}

func (b *storageBackend) Get(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(localPath), err)
	}
	return copyFile(b.resolve(remotePath), localPath)
}

func (b *storageBackend) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := os.Stat(b.resolve(remotePath))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", remotePath, err)
}

func (b *storageBackend) List(ctx context.Context, remoteDir string) ([]string, error) {
	dir := b.resolve(remoteDir)
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", remoteDir, err)
	}
	return paths, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
