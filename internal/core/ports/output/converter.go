package ports

import (
	"context"

	"github.com/thorrester/cardstore/internal/core/domain"
)

// ConvertedModel is the result of converting a trained model to the
// inference format.
type ConvertedModel struct {
	ModelBytes  []byte
	OnnxVersion string
	DataSchema  domain.FeatureMap
}

// ModelConverter converts a trained model into a serializable inference
// artifact plus the input schema inferred from the sample data. Conversion
// internals are opaque to the registry core.
type ModelConverter interface {
	Convert(ctx context.Context, model *domain.TrainedModel, sample *domain.Table) (*ConvertedModel, error)
}
