package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorage_PutGetRoundTrip(t *testing.T) {
	backend, err := New(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "data.json")
	assert.NoError(t, os.WriteFile(src, []byte(`{"x":1}`), 0o644))

	assert.NoError(t, backend.Put(ctx, src, "card_data_registry/team/name/v-1.0.0/data.json"))

	exists, err := backend.Exists(ctx, "card_data_registry/team/name/v-1.0.0/data.json")
	assert.NoError(t, err)
	assert.True(t, exists)

	dst := filepath.Join(t.TempDir(), "out.json")
	assert.NoError(t, backend.Get(ctx, "card_data_registry/team/name/v-1.0.0/data.json", dst))

	data, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(data))
}

func TestStorage_ExistsMissing(t *testing.T) {
	backend, err := New(t.TempDir())
	assert.NoError(t, err)

	exists, err := backend.Exists(context.Background(), "nope/missing.json")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestStorage_List(t *testing.T) {
	backend, err := New(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "f")
	assert.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	assert.NoError(t, backend.Put(ctx, src, "base/a.json"))
	assert.NoError(t, backend.Put(ctx, src, "base/nested/b.json"))
	assert.NoError(t, backend.Put(ctx, src, "other/c.json"))

	files, err := backend.List(ctx, "base")
	assert.NoError(t, err)
	assert.Equal(t, []string{"base/a.json", "base/nested/b.json"}, files)
}
