// Package registry owns the card lifecycle: version allocation, artifact
// persistence and metadata record bookkeeping.
package registry

import (
	"context"
	"fmt"
	"path"

	"github.com/thorrester/cardstore/internal/core/codec"
	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

// URI map keys returned by SaveArtifacts. These match the record column
// names the URIs are written to.
const (
	uriData          = "data_uri"
	uriProfile       = "profile_uri"
	uriProfileHTML   = "profile_html_uri"
	uriDataCard      = "datacard_uri"
	uriTrainedModel  = "trained_model_uri"
	uriSampleData    = "sample_data_uri"
	uriPreprocessor  = "preprocessor_uri"
	uriOnnxModel     = "onnx_model_uri"
	uriModelMetadata = "model_metadata_uri"
	uriModelCard     = "modelcard_uri"
	uriRunCard       = "runcard_uri"
	uriAudit         = "audit_uri"
)

// ArtifactSaver persists every artifact a card kind owns, in dependency
// order, writing the resulting URIs back onto the card. baseDir is the
// storage directory the registry resolved for the card. Any artifact
// failure aborts the whole call; the registry never writes a metadata
// record for a card whose artifacts did not all persist.
type ArtifactSaver interface {
	SaveArtifacts(ctx context.Context, card domain.Card, baseDir string) (map[string]string, error)
}

// SaverSet is the explicit dispatch table from card type to saver,
// resolved at wiring time.
type SaverSet struct {
	savers map[domain.CardType]ArtifactSaver
}

// NewSaverSet builds the dispatch table for every card variant.
func NewSaverSet(codecs *codec.Registry, backend ports.StorageBackend, converter ports.ModelConverter) *SaverSet {
	deps := saverDeps{codecs: codecs, backend: backend}
	return &SaverSet{savers: map[domain.CardType]ArtifactSaver{
		domain.CardTypeData:     &DataCardSaver{saverDeps: deps},
		domain.CardTypeModel:    &ModelCardSaver{saverDeps: deps, converter: converter},
		domain.CardTypeRun:      &RunCardSaver{saverDeps: deps},
		domain.CardTypePipeline: noopSaver{},
		domain.CardTypeProject:  noopSaver{},
		domain.CardTypeAudit:    &AuditCardSaver{saverDeps: deps},
	}}
}

// For returns the saver registered for the card type.
func (s *SaverSet) For(cardType domain.CardType) (ArtifactSaver, error) {
	saver, ok := s.savers[cardType]
	if !ok {
		return nil, fmt.Errorf("%w: no saver for %s cards", domain.ErrTypeMismatch, cardType)
	}
	return saver, nil
}

type saverDeps struct {
	codecs  *codec.Registry
	backend ports.StorageBackend
}

// spec resolves where an artifact is written. When the card already holds
// a URI for the slot, the spec reuses that URI's directory so the write
// lands on the same logical slot instead of drifting to a new path.
func (d saverDeps) spec(baseDir, existingURI, filename, extraPath string) domain.ArtifactStorageSpec {
	if existingURI != "" {
		return domain.ArtifactStorageSpec{SavePath: path.Dir(existingURI), Filename: filename}
	}
	return domain.ArtifactStorageSpec{SavePath: baseDir, Filename: filename, ExtraPath: extraPath}
}

func (d saverDeps) save(
	ctx context.Context,
	artifact any,
	kind domain.ArtifactKind,
	spec domain.ArtifactStorageSpec,
) (string, error) {
	sp, err := d.codecs.Save(ctx, d.backend, artifact, kind, spec)
	if err != nil {
		return "", err
	}
	return sp.URI, nil
}

// DataCardSaver persists a DataCard's data, optional profile artifacts and
// the card's own self-description blob.
type DataCardSaver struct {
	saverDeps
}

func (s *DataCardSaver) SaveArtifacts(ctx context.Context, c domain.Card, baseDir string) (map[string]string, error) {
	card, ok := c.(*domain.DataCard)
	if !ok {
		return nil, fmt.Errorf("%w: expected DataCard, got %s", domain.ErrTypeMismatch, c.CardType())
	}
	uris := make(map[string]string)

	if err := s.saveData(ctx, card, baseDir, uris); err != nil {
		return nil, err
	}
	if err := s.saveProfile(ctx, card, baseDir, uris); err != nil {
		return nil, err
	}

	// The card blob is written last and always rewritten: it must reflect
	// the URIs assigned above.
	uri, err := s.save(ctx, card, domain.ArtifactJSON,
		s.spec(baseDir, card.URIs.DataCardURI, domain.SaveNameCard, ""))
	if err != nil {
		return nil, err
	}
	card.URIs.DataCardURI = uri
	uris[uriDataCard] = uri

	return uris, nil
}

func (s *DataCardSaver) saveData(ctx context.Context, card *domain.DataCard, baseDir string, uris map[string]string) error {
	// Artifact slots are immutable once written: a populated URI is final
	// for this card version.
	if card.URIs.DataURI != "" {
		uris[uriData] = card.URIs.DataURI
		return nil
	}

	switch {
	case card.Data != nil:
		// Derive the feature map before the write so a schema failure
		// never leaves a URI pointing at a half-described table.
		schema, err := card.Data.Schema()
		if err != nil {
			return err
		}
		uri, err := s.save(ctx, card.Data, domain.ArtifactTable,
			s.spec(baseDir, "", domain.SaveNameData, ""))
		if err != nil {
			return err
		}
		card.URIs.DataURI = uri
		card.FeatureMap = schema
	case card.Array != nil:
		uri, err := s.save(ctx, card.Array, domain.ArtifactArray,
			s.spec(baseDir, "", domain.SaveNameData, ""))
		if err != nil {
			return err
		}
		card.URIs.DataURI = uri
	default:
		return fmt.Errorf("%w: datacard has no data payload", domain.ErrValidation)
	}
	uris[uriData] = card.URIs.DataURI
	return nil
}

func (s *DataCardSaver) saveProfile(ctx context.Context, card *domain.DataCard, baseDir string, uris map[string]string) error {
	if card.URIs.ProfileURI != "" {
		uris[uriProfile] = card.URIs.ProfileURI
	} else if card.Profile != nil {
		uri, err := s.save(ctx, card.Profile.Stats, domain.ArtifactObject,
			s.spec(baseDir, "", domain.SaveNameProfile, ""))
		if err != nil {
			return err
		}
		card.URIs.ProfileURI = uri
		uris[uriProfile] = uri
	}

	if card.URIs.ProfileHTMLURI != "" {
		uris[uriProfileHTML] = card.URIs.ProfileHTMLURI
	} else if card.Profile != nil && card.Profile.HTML != "" {
		uri, err := s.save(ctx, card.Profile.HTML, domain.ArtifactHTML,
			s.spec(baseDir, "", domain.SaveNameProfile, ""))
		if err != nil {
			return err
		}
		card.URIs.ProfileHTMLURI = uri
		uris[uriProfileHTML] = uri
	}
	return nil
}

// ModelCardSaver persists the trained model chain. Order matters: the
// trained model and sample data are saved before conversion, conversion
// output before the metadata blob, and the card blob last.
type ModelCardSaver struct {
	saverDeps
	converter ports.ModelConverter
}

func (s *ModelCardSaver) SaveArtifacts(ctx context.Context, c domain.Card, baseDir string) (map[string]string, error) {
	card, ok := c.(*domain.ModelCard)
	if !ok {
		return nil, fmt.Errorf("%w: expected ModelCard, got %s", domain.ErrTypeMismatch, c.CardType())
	}
	uris := make(map[string]string)

	// A populated metadata URI means the whole conversion chain already
	// ran for this version; re-running it would repeat expensive model
	// conversion for no new output.
	if card.Metadata.URIs.ModelMetadataURI == "" {
		if err := s.saveModelChain(ctx, card, baseDir); err != nil {
			return nil, err
		}
	}
	collectModelURIs(card, uris)

	uri, err := s.save(ctx, card, domain.ArtifactJSON,
		s.spec(baseDir, card.Metadata.URIs.ModelCardURI, domain.SaveNameCard, ""))
	if err != nil {
		return nil, err
	}
	card.Metadata.URIs.ModelCardURI = uri
	uris[uriModelCard] = uri

	return uris, nil
}

func (s *ModelCardSaver) saveModelChain(ctx context.Context, card *domain.ModelCard, baseDir string) error {
	if card.Model == nil || len(card.Model.Blob) == 0 {
		return fmt.Errorf("%w: modelcard has no trained model payload", domain.ErrValidation)
	}
	if card.SampleData == nil {
		return fmt.Errorf("%w: modelcard has no sample data payload", domain.ErrValidation)
	}

	uri, err := s.save(ctx, card.Model, domain.ArtifactModel,
		s.spec(baseDir, "", domain.SaveNameTrainedModel, "model"))
	if err != nil {
		return err
	}
	card.Metadata.URIs.TrainedModelURI = uri

	// Sample data is reduced to a single record; the saved artifact only
	// exists to pin the schema-validation contract.
	sample := card.SampleData.Head()
	uri, err = s.save(ctx, sample, domain.ArtifactTable,
		s.spec(baseDir, "", domain.SaveNameSampleData, ""))
	if err != nil {
		return err
	}
	card.Metadata.URIs.SampleDataURI = uri

	if len(card.Preprocessor) > 0 {
		uri, err = s.save(ctx, card.Preprocessor, domain.ArtifactObject,
			s.spec(baseDir, "", domain.SaveNamePreprocessor, "model"))
		if err != nil {
			return err
		}
		card.Metadata.URIs.PreprocessorURI = uri
	}

	onnxVersion := ""
	if card.ToOnnx {
		converted, err := s.converter.Convert(ctx, card.Model, sample)
		if err != nil {
			return fmt.Errorf("convert model %s: %w", card.Name, err)
		}
		uri, err = s.save(ctx, converted.ModelBytes, domain.ArtifactOnnx,
			s.spec(baseDir, "", domain.SaveNameOnnxModel, "onnx"))
		if err != nil {
			return err
		}
		card.Metadata.URIs.OnnxModelURI = uri
		card.Metadata.DataSchema = converted.DataSchema
		card.Metadata.OnnxModelDef = &domain.OnnxModelDef{
			OnnxVersion: converted.OnnxVersion,
			ModelBytes:  converted.ModelBytes,
		}
		onnxVersion = converted.OnnxVersion
	} else {
		schema, err := sample.Schema()
		if err != nil {
			return err
		}
		card.Metadata.DataSchema = schema
	}

	metadata := &domain.ModelMetadata{
		ModelName:    card.Name,
		ModelTeam:    card.Team,
		ModelVersion: card.Version,
		Framework:    card.Model.Framework,
		ModelURI:     card.Metadata.URIs.TrainedModelURI,
		OnnxURI:      card.Metadata.URIs.OnnxModelURI,
		OnnxVersion:  onnxVersion,
		DataSchema:   card.Metadata.DataSchema,
		SampleData:   sample,
	}
	uri, err = s.save(ctx, metadata, domain.ArtifactJSON,
		s.spec(baseDir, "", domain.SaveNameMetadata, ""))
	if err != nil {
		return err
	}
	card.Metadata.URIs.ModelMetadataURI = uri
	return nil
}

func collectModelURIs(card *domain.ModelCard, uris map[string]string) {
	set := func(key, uri string) {
		if uri != "" {
			uris[key] = uri
		}
	}
	set(uriTrainedModel, card.Metadata.URIs.TrainedModelURI)
	set(uriSampleData, card.Metadata.URIs.SampleDataURI)
	set(uriPreprocessor, card.Metadata.URIs.PreprocessorURI)
	set(uriOnnxModel, card.Metadata.URIs.OnnxModelURI)
	set(uriModelMetadata, card.Metadata.URIs.ModelMetadataURI)
}

// RunCardSaver persists run artifacts by name, then the runcard blob
// carrying metrics and params.
type RunCardSaver struct {
	saverDeps
}

func (s *RunCardSaver) SaveArtifacts(ctx context.Context, c domain.Card, baseDir string) (map[string]string, error) {
	card, ok := c.(*domain.RunCard)
	if !ok {
		return nil, fmt.Errorf("%w: expected RunCard, got %s", domain.ErrTypeMismatch, c.CardType())
	}
	uris := make(map[string]string)

	if card.ArtifactURIs == nil && len(card.Artifacts) > 0 {
		card.ArtifactURIs = make(map[string]string, len(card.Artifacts))
	}
	for name, payload := range card.Artifacts {
		if _, done := card.ArtifactURIs[name]; done {
			continue
		}
		uri, err := s.save(ctx, payload, domain.ArtifactObject,
			s.spec(baseDir, "", name, "artifacts"))
		if err != nil {
			return nil, err
		}
		card.ArtifactURIs[name] = uri
	}

	uri, err := s.save(ctx, card, domain.ArtifactJSON,
		s.spec(baseDir, card.RunCardURI, domain.SaveNameRunCard, ""))
	if err != nil {
		return nil, err
	}
	card.RunCardURI = uri
	uris[uriRunCard] = uri

	return uris, nil
}

// AuditCardSaver persists the audit blob.
type AuditCardSaver struct {
	saverDeps
}

func (s *AuditCardSaver) SaveArtifacts(ctx context.Context, c domain.Card, baseDir string) (map[string]string, error) {
	card, ok := c.(*domain.AuditCard)
	if !ok {
		return nil, fmt.Errorf("%w: expected AuditCard, got %s", domain.ErrTypeMismatch, c.CardType())
	}

	uri, err := s.save(ctx, card, domain.ArtifactJSON,
		s.spec(baseDir, card.AuditURI, domain.SaveNameAudit, ""))
	if err != nil {
		return nil, err
	}
	card.AuditURI = uri
	return map[string]string{uriAudit: uri}, nil
}

// noopSaver serves card kinds that own no artifacts of their own
// (pipeline, project); their state lives entirely in the metadata record.
type noopSaver struct{}

func (noopSaver) SaveArtifacts(ctx context.Context, card domain.Card, baseDir string) (map[string]string, error) {
	return map[string]string{}, nil
}
