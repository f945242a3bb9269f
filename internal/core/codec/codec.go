// Package codec maps artifact kinds to save/load strategies. Dispatch is
// an explicit registration table resolved at construction time.
package codec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

// Codec encodes and decodes one artifact kind. Encode rejects values whose
// shape does not match the kind; Decode fills the pointer it is given.
type Codec interface {
	Kind() domain.ArtifactKind
	Encode(artifact any) ([]byte, error)
	Decode(data []byte, into any) error
}

// Registry dispatches artifact saves and loads to registered codecs.
type Registry struct {
	codecs map[domain.ArtifactKind]Codec
}

// NewRegistry returns a Registry with every built-in codec registered.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[domain.ArtifactKind]Codec)}
	for _, c := range []Codec{
		tableCodec{},
		arrayCodec{},
		modelCodec{},
		rawCodec{kind: domain.ArtifactOnnx},
		jsonCodec{},
		objectCodec{},
		htmlCodec{},
	} {
		r.codecs[c.Kind()] = c
	}
	return r
}

func (r *Registry) codec(kind domain.ArtifactKind) (Codec, error) {
	c, ok := r.codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedArtifact, kind)
	}
	return c, nil
}

// Save encodes the artifact and uploads it to the path described by spec.
// Writing the same artifact with the same spec overwrites the same remote
// path. The returned StoragePath is only valid if err is nil; callers must
// not record a URI from a failed save.
func (r *Registry) Save(
	ctx context.Context,
	backend ports.StorageBackend,
	artifact any,
	kind domain.ArtifactKind,
	spec domain.ArtifactStorageSpec,
) (domain.StoragePath, error) {
	c, err := r.codec(kind)
	if err != nil {
		return domain.StoragePath{}, err
	}

	data, err := c.Encode(artifact)
	if err != nil {
		return domain.StoragePath{}, err
	}

	tmpDir, err := os.MkdirTemp("", "cardstore-save-")
	if err != nil {
		return domain.StoragePath{}, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, spec.Filename+kind.Suffix())
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return domain.StoragePath{}, fmt.Errorf("stage artifact: %w", err)
	}

	remotePath := spec.RemotePath(kind.Suffix())
	if err := backend.Put(ctx, localPath, remotePath); err != nil {
		return domain.StoragePath{}, fmt.Errorf("upload %s: %w", remotePath, err)
	}
	return domain.StoragePath{URI: remotePath}, nil
}

// Load downloads the artifact described by spec into a scoped staging dir,
// decodes it into the given pointer and removes the staging dir on every
// exit path.
func (r *Registry) Load(
	ctx context.Context,
	backend ports.StorageBackend,
	kind domain.ArtifactKind,
	spec domain.ArtifactStorageSpec,
	into any,
) error {
	c, err := r.codec(kind)
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "cardstore-load-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	remotePath := spec.RemotePath(kind.Suffix())
	localPath := filepath.Join(tmpDir, spec.Filename+kind.Suffix())
	if err := backend.Get(ctx, remotePath, localPath); err != nil {
		return fmt.Errorf("download %s: %w", remotePath, err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read staged artifact: %w", err)
	}
	return c.Decode(data, into)
}
