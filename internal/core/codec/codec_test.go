package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thorrester/cardstore/internal/core/domain"
	"github.com/thorrester/cardstore/internal/testutil"
)

func TestTableCodec_RoundTrip(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"age", "score", "label"},
		Rows:    [][]any{{42, 0.5, "yes"}, {7, 0.25, "no"}},
	}

	data, err := tableCodec{}.Encode(table)
	assert.NoError(t, err)

	var decoded domain.Table
	assert.NoError(t, tableCodec{}.Decode(data, &decoded))
	assert.Equal(t, table.Columns, decoded.Columns)
	assert.Equal(t, table.Rows, decoded.Rows)
}

func TestTableCodec_RowWidthMismatch(t *testing.T) {
	table := &domain.Table{Columns: []string{"a", "b"}, Rows: [][]any{{1}}}

	_, err := tableCodec{}.Encode(table)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTableCodec_WrongShape(t *testing.T) {
	_, err := tableCodec{}.Encode("not a table")
	assert.ErrorIs(t, err, domain.ErrUnsupportedArtifact)

	var s string
	err = tableCodec{}.Decode([]byte("{}"), &s)
	assert.ErrorIs(t, err, domain.ErrUnsupportedArtifact)
}

func TestArrayCodec_RoundTrip(t *testing.T) {
	arr := domain.Array{1.5, 2.5, 3.5}

	data, err := arrayCodec{}.Encode(arr)
	assert.NoError(t, err)

	var decoded domain.Array
	assert.NoError(t, arrayCodec{}.Decode(data, &decoded))
	assert.Equal(t, arr, decoded)
}

func TestModelCodec_EmptyBlob(t *testing.T) {
	_, err := modelCodec{}.Encode(&domain.TrainedModel{Framework: "sklearn"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestModelCodec_RoundTrip(t *testing.T) {
	data, err := modelCodec{}.Encode(&domain.TrainedModel{Framework: "sklearn", Blob: []byte{1, 2, 3}})
	assert.NoError(t, err)

	var decoded domain.TrainedModel
	assert.NoError(t, modelCodec{}.Decode(data, &decoded))
	assert.Equal(t, []byte{1, 2, 3}, decoded.Blob)
}

func TestObjectCodec_RoundTrip(t *testing.T) {
	payload := map[string]float64{"mean": 1.5, "std": 0.25}

	data, err := objectCodec{}.Encode(payload)
	assert.NoError(t, err)

	var decoded map[string]float64
	assert.NoError(t, objectCodec{}.Decode(data, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestHTMLCodec_RoundTrip(t *testing.T) {
	data, err := htmlCodec{}.Encode("<html></html>")
	assert.NoError(t, err)

	var decoded string
	assert.NoError(t, htmlCodec{}.Decode(data, &decoded))
	assert.Equal(t, "<html></html>", decoded)
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := NewRegistry()
	backend := testutil.NewFakeStorageBackend()

	_, err := r.Save(context.Background(), backend, []byte{}, domain.ArtifactKind("bogus"), domain.ArtifactStorageSpec{
		SavePath: "base", Filename: "f",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedArtifact)
}

func TestRegistry_SaveLoadRoundTrip(t *testing.T) {
	r := NewRegistry()
	backend := testutil.NewFakeStorageBackend()
	ctx := context.Background()

	table := &domain.Table{Columns: []string{"x"}, Rows: [][]any{{1}, {2}}}
	spec := domain.ArtifactStorageSpec{SavePath: "card_data_registry/team/name/v-1.0.0", Filename: "cities"}

	path, err := r.Save(ctx, backend, table, domain.ArtifactTable, spec)
	assert.NoError(t, err)
	assert.Equal(t, "card_data_registry/team/name/v-1.0.0/cities.table.json", path.URI)

	var decoded domain.Table
	assert.NoError(t, r.Load(ctx, backend, domain.ArtifactTable, spec, &decoded))
	assert.Equal(t, table.Rows, decoded.Rows)
}

func TestRegistry_FailedSaveUploadsNothing(t *testing.T) {
	r := NewRegistry()
	backend := testutil.NewFakeStorageBackend()

	table := &domain.Table{Columns: []string{"a", "b"}, Rows: [][]any{{1}}}
	_, err := r.Save(context.Background(), backend, table, domain.ArtifactTable, domain.ArtifactStorageSpec{
		SavePath: "base", Filename: "broken",
	})
	assert.Error(t, err)
	assert.Empty(t, backend.Puts)
}
