package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thorrester/cardstore/internal/core/codec"
	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
	"github.com/thorrester/cardstore/internal/testutil"
)

func newTestSavers(backend ports.StorageBackend, converter ports.ModelConverter) *SaverSet {
	return NewSaverSet(codec.NewRegistry(), backend, converter)
}

func sampleTable() *domain.Table {
	return &domain.Table{
		Columns: []string{"age", "score"},
		Rows:    [][]any{{42, 0.5}, {7, 0.25}, {19, 0.75}},
	}
}

func TestDataCardSaver_SavesDataAndCardBlob(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	card, err := domain.NewDataCard("cities", "analytics", nil)
	assert.NoError(t, err)
	card.Version = "1.0.0"
	card.Data = sampleTable()

	saver, err := savers.For(domain.CardTypeData)
	assert.NoError(t, err)

	uris, err := saver.SaveArtifacts(context.Background(), card, "base")
	assert.NoError(t, err)

	assert.Equal(t, "base/data.table.json", uris["data_uri"])
	assert.Equal(t, "base/card.json", uris["datacard_uri"])
	assert.Equal(t, domain.FeatureMap{"age": domain.FeatureInt, "score": domain.FeatureFloat}, card.FeatureMap)
	assert.Equal(t, 1, backend.Puts["base/data.table.json"])
}

func TestDataCardSaver_SecondSaveSkipsSetSlots(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	card, err := domain.NewDataCard("cities", "analytics", nil)
	assert.NoError(t, err)
	card.Data = sampleTable()

	saver, _ := savers.For(domain.CardTypeData)
	ctx := context.Background()

	_, err = saver.SaveArtifacts(ctx, card, "base")
	assert.NoError(t, err)
	_, err = saver.SaveArtifacts(ctx, card, "base")
	assert.NoError(t, err)

	// Data slot is immutable once written; only the card blob is
	// rewritten.
	assert.Equal(t, 1, backend.Puts["base/data.table.json"])
	assert.Equal(t, 2, backend.Puts["base/card.json"])
}

func TestDataCardSaver_Profile(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	card, err := domain.NewDataCard("cities", "analytics", nil)
	assert.NoError(t, err)
	card.Array = domain.Array{1, 2, 3}
	card.Profile = &domain.DataProfile{
		Stats: map[string]float64{"mean": 2},
		HTML:  "<html></html>",
	}

	saver, _ := savers.For(domain.CardTypeData)
	uris, err := saver.SaveArtifacts(context.Background(), card, "base")
	assert.NoError(t, err)

	assert.Equal(t, "base/data.array.json", uris["data_uri"])
	assert.Equal(t, "base/data-profile.gob", uris["profile_uri"])
	assert.Equal(t, "base/data-profile.html", uris["profile_html_uri"])
}

func TestDataCardSaver_NoPayload(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	card, err := domain.NewDataCard("cities", "analytics", nil)
	assert.NoError(t, err)

	saver, _ := savers.For(domain.CardTypeData)
	_, err = saver.SaveArtifacts(context.Background(), card, "base")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, backend.Puts)
}

func TestDataCardSaver_FailedUploadRecordsNoURI(t *testing.T) {
	backend := new(testutil.MockStorageBackend)
	backend.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	savers := newTestSavers(backend, nil)

	card, err := domain.NewDataCard("cities", "analytics", nil)
	assert.NoError(t, err)
	card.Data = sampleTable()

	saver, _ := savers.For(domain.CardTypeData)
	_, err = saver.SaveArtifacts(context.Background(), card, "base")
	assert.Error(t, err)
	assert.Empty(t, card.URIs.DataURI)
}

func TestModelCardSaver_ChainWithoutConversion(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	model := &domain.TrainedModel{Framework: "sklearn", Blob: []byte{1, 2, 3}}
	card, err := domain.NewModelCard("classifier", "mlops", model, sampleTable(), nil)
	assert.NoError(t, err)
	card.Version = "1.0.0"
	card.Preprocessor = []byte{9, 9}

	saver, _ := savers.For(domain.CardTypeModel)
	uris, err := saver.SaveArtifacts(context.Background(), card, "base")
	assert.NoError(t, err)

	assert.Equal(t, "base/model/trained-model.model", uris["trained_model_uri"])
	assert.Equal(t, "base/sample-data.table.json", uris["sample_data_uri"])
	assert.Equal(t, "base/model/preprocessor.gob", uris["preprocessor_uri"])
	assert.Equal(t, "base/model-metadata.json", uris["model_metadata_uri"])
	assert.Equal(t, "base/card.json", uris["modelcard_uri"])
	assert.NotContains(t, uris, "onnx_model_uri")

	// Schema is derived from the sample when no conversion runs.
	assert.Equal(t, domain.FeatureMap{"age": domain.FeatureInt, "score": domain.FeatureFloat}, card.Metadata.DataSchema)
}

func TestModelCardSaver_ConversionChain(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	converter := new(testutil.MockModelConverter)
	converter.On("Convert", mock.Anything, mock.Anything, mock.Anything).Return(&ports.ConvertedModel{
		ModelBytes:  []byte{7, 7},
		OnnxVersion: "1.14",
		DataSchema:  domain.FeatureMap{"age": domain.FeatureInt, "score": domain.FeatureFloat},
	}, nil)
	savers := newTestSavers(backend, converter)

	model := &domain.TrainedModel{Framework: "sklearn", Blob: []byte{1, 2, 3}}
	card, err := domain.NewModelCard("classifier", "mlops", model, sampleTable(), nil)
	assert.NoError(t, err)
	card.ToOnnx = true

	saver, _ := savers.For(domain.CardTypeModel)
	uris, err := saver.SaveArtifacts(context.Background(), card, "base")
	assert.NoError(t, err)

	assert.Equal(t, "base/onnx/onnx-model.onnx", uris["onnx_model_uri"])
	assert.Equal(t, "1.14", card.Metadata.OnnxModelDef.OnnxVersion)
	converter.AssertExpectations(t)

	// The converter sees the single-record sample, not the full table.
	sample := converter.Calls[0].Arguments.Get(2).(*domain.Table)
	assert.Equal(t, 1, sample.NumRows())
}

func TestModelCardSaver_SkipsChainWhenMetadataSet(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	converter := new(testutil.MockModelConverter)
	savers := newTestSavers(backend, converter)

	model := &domain.TrainedModel{Framework: "sklearn", Blob: []byte{1, 2, 3}}
	card, err := domain.NewModelCard("classifier", "mlops", model, sampleTable(), nil)
	assert.NoError(t, err)
	card.ToOnnx = true
	card.Metadata.URIs.ModelMetadataURI = "base/model-metadata.json"
	card.Metadata.URIs.TrainedModelURI = "base/model/trained-model.model"

	saver, _ := savers.For(domain.CardTypeModel)
	uris, err := saver.SaveArtifacts(context.Background(), card, "base")
	assert.NoError(t, err)

	assert.Equal(t, "base/model/trained-model.model", uris["trained_model_uri"])
	assert.Equal(t, 1, len(backend.Puts))
	assert.Equal(t, 1, backend.Puts["base/card.json"])
	converter.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything)
}

func TestModelCardSaver_MissingSampleData(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	model := &domain.TrainedModel{Framework: "sklearn", Blob: []byte{1}}
	card, err := domain.NewModelCard("classifier", "mlops", model, nil, nil)
	assert.NoError(t, err)

	saver, _ := savers.For(domain.CardTypeModel)
	_, err = saver.SaveArtifacts(context.Background(), card, "base")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRunCardSaver_ArtifactsByName(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	card, err := domain.NewRunCard("exp-1", "mlops", nil)
	assert.NoError(t, err)
	card.LogMetric("accuracy", 0.9, 0)
	card.LogArtifact("confusion-matrix", []byte{1, 2})

	saver, _ := savers.For(domain.CardTypeRun)
	ctx := context.Background()

	uris, err := saver.SaveArtifacts(ctx, card, "base")
	assert.NoError(t, err)
	assert.Equal(t, "base/runcard.json", uris["runcard_uri"])
	assert.Equal(t, "base/artifacts/confusion-matrix.gob", card.ArtifactURIs["confusion-matrix"])

	// Re-save uploads no named artifact twice.
	_, err = saver.SaveArtifacts(ctx, card, "base")
	assert.NoError(t, err)
	assert.Equal(t, 1, backend.Puts["base/artifacts/confusion-matrix.gob"])
	assert.Equal(t, 2, backend.Puts["base/runcard.json"])
}

func TestNoopSaver_PipelineAndProject(t *testing.T) {
	backend := testutil.NewFakeStorageBackend()
	savers := newTestSavers(backend, nil)

	card, err := domain.NewPipelineCard("pipe", "mlops", nil)
	assert.NoError(t, err)

	saver, err := savers.For(domain.CardTypePipeline)
	assert.NoError(t, err)

	uris, err := saver.SaveArtifacts(context.Background(), card, "base")
	assert.NoError(t, err)
	assert.Empty(t, uris)
	assert.Empty(t, backend.Puts)
}

func TestSaverSet_TypeMismatch(t *testing.T) {
	savers := newTestSavers(testutil.NewFakeStorageBackend(), nil)

	dataCard, err := domain.NewDataCard("cities", "analytics", nil)
	assert.NoError(t, err)

	saver, _ := savers.For(domain.CardTypeModel)
	_, err = saver.SaveArtifacts(context.Background(), dataCard, "base")
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}
