package ports

import "context"

// StorageBackend is the blob storage contract. The registry core never
// branches on backend identity; local filesystem, object store and the
// remote API proxy all sit behind this interface.
type StorageBackend interface {
	// Put uploads the file at localPath to remotePath, overwriting any
	// existing object (idempotent write).
	Put(ctx context.Context, localPath, remotePath string) error

	// Get downloads remotePath to localPath, creating parent directories
	// as needed.
	Get(ctx context.Context, remotePath, localPath string) error

	Exists(ctx context.Context, remotePath string) (bool, error)
	List(ctx context.Context, remoteDir string) ([]string, error)
}
