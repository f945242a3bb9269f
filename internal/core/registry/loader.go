package registry

import (
	"context"
	"fmt"
	"path"

	"github.com/thorrester/cardstore/internal/core/codec"
	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

// LoaderSet bundles the per-variant loaders, keyed by card type at wiring
// time. Load methods are individually callable, idempotent, and pull only
// the artifact they name.
type LoaderSet struct {
	Data  *DataCardLoader
	Model *ModelCardLoader
	Run   *RunCardLoader
	Audit *AuditCardLoader
}

// NewLoaderSet builds loaders sharing one codec registry and backend.
func NewLoaderSet(codecs *codec.Registry, backend ports.StorageBackend) *LoaderSet {
	deps := loaderDeps{codecs: codecs, backend: backend}
	return &LoaderSet{
		Data:  &DataCardLoader{loaderDeps: deps},
		Model: &ModelCardLoader{loaderDeps: deps},
		Run:   &RunCardLoader{loaderDeps: deps},
		Audit: &AuditCardLoader{loaderDeps: deps},
	}
}

type loaderDeps struct {
	codecs  *codec.Registry
	backend ports.StorageBackend
}

// slotSpec rebuilds an artifact's storage spec from the directory of its
// stored URI plus the fixed filename. The filename baked into old metadata
// is never trusted.
func slotSpec(uri, filename string) domain.ArtifactStorageSpec {
	return domain.ArtifactStorageSpec{SavePath: path.Dir(uri), Filename: filename}
}

// loadRequired fetches an artifact the metadata row promised exists. A
// missing blob is a corrupt record, never a silent no-op.
func (d loaderDeps) loadRequired(ctx context.Context, uri, filename string, kind domain.ArtifactKind, into any) error {
	if uri == "" {
		return fmt.Errorf("%w: required %s artifact has no uri", domain.ErrCorruptRecord, filename)
	}
	spec := slotSpec(uri, filename)
	ok, err := d.backend.Exists(ctx, spec.RemotePath(kind.Suffix()))
	if err != nil {
		return fmt.Errorf("check %s: %w", spec.RemotePath(kind.Suffix()), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCorruptRecord, spec.RemotePath(kind.Suffix()))
	}
	return d.codecs.Load(ctx, d.backend, kind, spec, into)
}

// loadOptional fetches an artifact that may legitimately be absent.
// Returns false without error when the blob does not exist.
func (d loaderDeps) loadOptional(ctx context.Context, uri, filename string, kind domain.ArtifactKind, into any) (bool, error) {
	if uri == "" {
		return false, nil
	}
	spec := slotSpec(uri, filename)
	ok, err := d.backend.Exists(ctx, spec.RemotePath(kind.Suffix()))
	if err != nil {
		return false, fmt.Errorf("check %s: %w", spec.RemotePath(kind.Suffix()), err)
	}
	if !ok {
		return false, nil
	}
	if err := d.codecs.Load(ctx, d.backend, kind, spec, into); err != nil {
		return false, err
	}
	return true, nil
}

// DataCardLoader materializes DataCard payloads from storage.
type DataCardLoader struct {
	loaderDeps
}

// LoadData pulls the data payload onto the card, whichever representation
// was saved. No-op when data is already present; a registered card whose
// data blob is gone is a corrupt record.
func (l *DataCardLoader) LoadData(ctx context.Context, card *domain.DataCard) error {
	if card.Data != nil || card.Array != nil {
		return nil
	}

	var table domain.Table
	ok, err := l.loadOptional(ctx, card.URIs.DataURI, domain.SaveNameData, domain.ArtifactTable, &table)
	if err != nil {
		return err
	}
	if ok {
		card.Data = &table
		return nil
	}

	var arr domain.Array
	ok, err = l.loadOptional(ctx, card.URIs.DataURI, domain.SaveNameData, domain.ArtifactArray, &arr)
	if err != nil {
		return err
	}
	if ok {
		card.Array = arr
		return nil
	}
	return fmt.Errorf("%w: data artifact missing for %s", domain.ErrCorruptRecord, card.URIs.DataURI)
}

// LoadProfile pulls the optional data profile. Absent profiles are not an
// error.
func (l *DataCardLoader) LoadProfile(ctx context.Context, card *domain.DataCard) error {
	if card.Profile != nil {
		return nil
	}
	var stats map[string]float64
	ok, err := l.loadOptional(ctx, card.URIs.ProfileURI, domain.SaveNameProfile, domain.ArtifactObject, &stats)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	profile := &domain.DataProfile{Stats: stats}

	var html string
	ok, err = l.loadOptional(ctx, card.URIs.ProfileHTMLURI, domain.SaveNameProfile, domain.ArtifactHTML, &html)
	if err != nil {
		return err
	}
	if ok {
		profile.HTML = html
	}
	card.Profile = profile
	return nil
}

// ModelCardLoader materializes ModelCard payloads from storage.
type ModelCardLoader struct {
	loaderDeps
}

// LoadModel pulls the trained model plus its preprocessor and sample data.
// No-op when the model bytes are already present.
func (l *ModelCardLoader) LoadModel(ctx context.Context, card *domain.ModelCard) error {
	if card.Model != nil && len(card.Model.Blob) > 0 {
		return nil
	}

	var model domain.TrainedModel
	if card.Model != nil {
		model.Framework = card.Model.Framework
	}
	if err := l.loadRequired(ctx, card.Metadata.URIs.TrainedModelURI,
		domain.SaveNameTrainedModel, domain.ArtifactModel, &model); err != nil {
		return err
	}
	card.Model = &model

	if err := l.loadPreprocessor(ctx, card); err != nil {
		return err
	}
	return l.LoadSampleData(ctx, card)
}

func (l *ModelCardLoader) loadPreprocessor(ctx context.Context, card *domain.ModelCard) error {
	if len(card.Preprocessor) > 0 {
		return nil
	}
	var preprocessor []byte
	ok, err := l.loadOptional(ctx, card.Metadata.URIs.PreprocessorURI,
		domain.SaveNamePreprocessor, domain.ArtifactObject, &preprocessor)
	if err != nil {
		return err
	}
	if ok {
		card.Preprocessor = preprocessor
	}
	return nil
}

// LoadSampleData pulls the single-record sample input. No-op when already
// present; silently absent sample data is tolerated.
func (l *ModelCardLoader) LoadSampleData(ctx context.Context, card *domain.ModelCard) error {
	if card.SampleData != nil {
		return nil
	}
	var sample domain.Table
	ok, err := l.loadOptional(ctx, card.Metadata.URIs.SampleDataURI,
		domain.SaveNameSampleData, domain.ArtifactTable, &sample)
	if err != nil {
		return err
	}
	if ok {
		card.SampleData = &sample
	}
	return nil
}

// LoadOnnxModel pulls the converted inference-format model. Optional: a
// card registered without conversion simply has none.
func (l *ModelCardLoader) LoadOnnxModel(ctx context.Context, card *domain.ModelCard) error {
	if card.Metadata.OnnxModelDef != nil && len(card.Metadata.OnnxModelDef.ModelBytes) > 0 {
		return nil
	}
	var modelBytes []byte
	ok, err := l.loadOptional(ctx, card.Metadata.URIs.OnnxModelURI,
		domain.SaveNameOnnxModel, domain.ArtifactOnnx, &modelBytes)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if card.Metadata.OnnxModelDef == nil {
		card.Metadata.OnnxModelDef = &domain.OnnxModelDef{}
	}
	card.Metadata.OnnxModelDef.ModelBytes = modelBytes
	return nil
}

// LoadMetadata pulls the self-describing model metadata blob.
func (l *ModelCardLoader) LoadMetadata(ctx context.Context, card *domain.ModelCard) (*domain.ModelMetadata, error) {
	var metadata domain.ModelMetadata
	if err := l.loadRequired(ctx, card.Metadata.URIs.ModelMetadataURI,
		domain.SaveNameMetadata, domain.ArtifactJSON, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// RunCardLoader materializes RunCard payloads from storage.
type RunCardLoader struct {
	loaderDeps
}

// LoadRun pulls metrics and params from the runcard blob. No-op when
// metrics are already present.
func (l *RunCardLoader) LoadRun(ctx context.Context, card *domain.RunCard) error {
	if card.Metrics != nil || card.Params != nil {
		return nil
	}
	var stored domain.RunCard
	if err := l.loadRequired(ctx, card.RunCardURI,
		domain.SaveNameRunCard, domain.ArtifactJSON, &stored); err != nil {
		return err
	}
	card.Metrics = stored.Metrics
	card.Params = stored.Params
	return nil
}

// LoadArtifact pulls one named run artifact.
func (l *RunCardLoader) LoadArtifact(ctx context.Context, card *domain.RunCard, name string) error {
	if _, ok := card.Artifacts[name]; ok {
		return nil
	}
	uri, ok := card.ArtifactURIs[name]
	if !ok {
		return fmt.Errorf("%w: run has no artifact named %q", domain.ErrNotFound, name)
	}
	var payload []byte
	if err := l.loadRequired(ctx, uri, name, domain.ArtifactObject, &payload); err != nil {
		return err
	}
	if card.Artifacts == nil {
		card.Artifacts = make(map[string][]byte)
	}
	card.Artifacts[name] = payload
	return nil
}

// AuditCardLoader materializes AuditCard sections from storage.
type AuditCardLoader struct {
	loaderDeps
}

// LoadAudit pulls the audit sections. No-op when already present.
func (l *AuditCardLoader) LoadAudit(ctx context.Context, card *domain.AuditCard) error {
	if len(card.Sections) > 0 {
		return nil
	}
	var stored domain.AuditCard
	if err := l.loadRequired(ctx, card.AuditURI,
		domain.SaveNameAudit, domain.ArtifactJSON, &stored); err != nil {
		return err
	}
	card.Sections = stored.Sections
	return nil
}
