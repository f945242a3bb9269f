package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/thorrester/cardstore/internal/core/domain"
)

// modelCodec persists the raw serialized bytes of a trained model. The
// framework tag travels on the card record, not in the blob.
type modelCodec struct{}

func (modelCodec) Kind() domain.ArtifactKind { return domain.ArtifactModel }

func (modelCodec) Encode(artifact any) ([]byte, error) {
	switch m := artifact.(type) {
	case *domain.TrainedModel:
		if len(m.Blob) == 0 {
			return nil, fmt.Errorf("%w: trained model has no serialized bytes", domain.ErrValidation)
		}
		return m.Blob, nil
	case []byte:
		return m, nil
	default:
		return nil, fmt.Errorf("%w: expected *domain.TrainedModel or []byte, got %T", domain.ErrUnsupportedArtifact, artifact)
	}
}

func (modelCodec) Decode(data []byte, into any) error {
	switch target := into.(type) {
	case *domain.TrainedModel:
		target.Blob = data
		return nil
	case *[]byte:
		*target = data
		return nil
	default:
		return fmt.Errorf("%w: expected *domain.TrainedModel or *[]byte target, got %T", domain.ErrUnsupportedArtifact, into)
	}
}

// rawCodec passes bytes through untouched. Used for ONNX binaries.
type rawCodec struct {
	kind domain.ArtifactKind
}

func (c rawCodec) Kind() domain.ArtifactKind { return c.kind }

func (rawCodec) Encode(artifact any) ([]byte, error) {
	data, ok := artifact.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: expected []byte, got %T", domain.ErrUnsupportedArtifact, artifact)
	}
	return data, nil
}

func (rawCodec) Decode(data []byte, into any) error {
	target, ok := into.(*[]byte)
	if !ok {
		return fmt.Errorf("%w: expected *[]byte target, got %T", domain.ErrUnsupportedArtifact, into)
	}
	*target = data
	return nil
}

// jsonCodec persists any JSON-marshalable value. Card self-description
// blobs and model metadata use this.
type jsonCodec struct{}

func (jsonCodec) Kind() domain.ArtifactKind { return domain.ArtifactJSON }

func (jsonCodec) Encode(artifact any) ([]byte, error) {
	data, err := json.Marshal(artifact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedArtifact, err)
	}
	return data, nil
}

func (jsonCodec) Decode(data []byte, into any) error {
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("decode json artifact: %w", err)
	}
	return nil
}

// objectCodec persists arbitrary serializable Go values via gob.
type objectCodec struct{}

func (objectCodec) Kind() domain.ArtifactKind { return domain.ArtifactObject }

func (objectCodec) Encode(artifact any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedArtifact, err)
	}
	return buf.Bytes(), nil
}

func (objectCodec) Decode(data []byte, into any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(into); err != nil {
		return fmt.Errorf("decode object artifact: %w", err)
	}
	return nil
}

// htmlCodec persists rendered HTML text.
type htmlCodec struct{}

func (htmlCodec) Kind() domain.ArtifactKind { return domain.ArtifactHTML }

func (htmlCodec) Encode(artifact any) ([]byte, error) {
	s, ok := artifact.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected string, got %T", domain.ErrUnsupportedArtifact, artifact)
	}
	return []byte(s), nil
}

func (htmlCodec) Decode(data []byte, into any) error {
	target, ok := into.(*string)
	if !ok {
		return fmt.Errorf("%w: expected *string target, got %T", domain.ErrUnsupportedArtifact, into)
	}
	*target = string(data)
	return nil
}
