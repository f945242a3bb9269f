// Package onnx holds ModelConverter implementations.
package onnx

import (
	"context"
	"fmt"

	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

// Unavailable is the converter wired where conversion cannot run, such as
// the registry server. Clients convert before registering; a card arriving
// with ToOnnx set and no converted payload is rejected.
type Unavailable struct{}

func (Unavailable) Convert(ctx context.Context, model *domain.TrainedModel, sample *domain.Table) (*ports.ConvertedModel, error) {
	return nil, fmt.Errorf("%w: onnx conversion is not available in this process", domain.ErrUnsupportedArtifact)
}

var _ ports.ModelConverter = Unavailable{}
