package domain

// TrainedModel is the opaque trained-model payload a client hands the
// registry: serialized model bytes plus the framework that produced them.
type TrainedModel struct {
	Framework string `json:"framework"`
	Blob      []byte `json:"-"`
}

// OnnxModelDef describes a converted inference-format model.
type OnnxModelDef struct {
	OnnxVersion string `json:"onnx_version,omitempty"`
	ModelBytes  []byte `json:"-"`
}

// ModelCardURIs holds the artifact references owned by a ModelCard.
type ModelCardURIs struct {
	TrainedModelURI  string `json:"trained_model_uri,omitempty"`
	SampleDataURI    string `json:"sample_data_uri,omitempty"`
	PreprocessorURI  string `json:"preprocessor_uri,omitempty"`
	OnnxModelURI     string `json:"onnx_model_uri,omitempty"`
	ModelMetadataURI string `json:"model_metadata_uri,omitempty"`
	ModelCardURI     string `json:"modelcard_uri,omitempty"`
}

// ModelCardMetadata is the nested metadata block of a ModelCard. This is
// the canonical shape; older flat metric representations are not supported.
type ModelCardMetadata struct {
	URIs         ModelCardURIs `json:"uris"`
	DataSchema   FeatureMap    `json:"data_schema,omitempty"`
	OnnxModelDef *OnnxModelDef `json:"onnx_model_def,omitempty"`
}

// ModelMetadata is the self-describing JSON blob written next to a model's
// artifacts for consumers that never touch the registry database.
type ModelMetadata struct {
	ModelName    string     `json:"model_name"`
	ModelTeam    string     `json:"model_team"`
	ModelVersion string     `json:"model_version"`
	Framework    string     `json:"model_framework"`
	ModelURI     string     `json:"model_uri"`
	OnnxURI      string     `json:"onnx_uri,omitempty"`
	OnnxVersion  string     `json:"onnx_version,omitempty"`
	DataSchema   FeatureMap `json:"data_schema,omitempty"`
	SampleData   *Table     `json:"sample_data,omitempty"`
}

// ModelCard registers a trained model together with the sample input used
// for schema inference.
type ModelCard struct {
	CardIdentity

	Model      *TrainedModel `json:"-"`
	SampleData *Table        `json:"-"`

	// Preprocessor is optional serialized preprocessing state.
	Preprocessor []byte `json:"-"`

	// ToOnnx requests conversion to the inference format at save time.
	ToOnnx bool `json:"to_onnx"`

	Metadata ModelCardMetadata `json:"metadata"`

	// DataCardUID links the dataset the model was trained on.
	DataCardUID string `json:"datacard_uid,omitempty"`
}

// NewModelCard constructs an unregistered ModelCard, merging info overrides.
func NewModelCard(name, team string, model *TrainedModel, sample *Table, info *CardInfo) (*ModelCard, error) {
	card := &ModelCard{
		CardIdentity: CardIdentity{Name: name, Team: team},
		Model:        model,
		SampleData:   sample,
	}
	card.ApplyInfo(info)
	if err := card.Clean(); err != nil {
		return nil, err
	}
	return card, nil
}

func (c *ModelCard) Identity() *CardIdentity { return &c.CardIdentity }
func (c *ModelCard) CardType() CardType      { return CardTypeModel }

func (c *ModelCard) Record() *CardRecord {
	framework := ""
	if c.Model != nil {
		framework = c.Model.Framework
	}
	return &CardRecord{
		UID:              c.UID,
		Name:             c.Name,
		Team:             c.Team,
		Email:            c.Email,
		Version:          c.Version,
		Tags:             c.Tags,
		CreatedAt:        c.CreatedAt,
		TrainedModelURI:  c.Metadata.URIs.TrainedModelURI,
		SampleDataURI:    c.Metadata.URIs.SampleDataURI,
		PreprocessorURI:  c.Metadata.URIs.PreprocessorURI,
		OnnxModelURI:     c.Metadata.URIs.OnnxModelURI,
		ModelMetadataURI: c.Metadata.URIs.ModelMetadataURI,
		ModelCardURI:     c.Metadata.URIs.ModelCardURI,
		Framework:        framework,
	}
}

// ModelCardFromRecord materializes a ModelCard from a stored record.
func ModelCardFromRecord(rec *CardRecord) *ModelCard {
	card := &ModelCard{
		CardIdentity: identityFromRecord(rec),
		Metadata: ModelCardMetadata{
			URIs: ModelCardURIs{
				TrainedModelURI:  rec.TrainedModelURI,
				SampleDataURI:    rec.SampleDataURI,
				PreprocessorURI:  rec.PreprocessorURI,
				OnnxModelURI:     rec.OnnxModelURI,
				ModelMetadataURI: rec.ModelMetadataURI,
				ModelCardURI:     rec.ModelCardURI,
			},
		},
	}
	if rec.Framework != "" {
		card.Model = &TrainedModel{Framework: rec.Framework}
	}
	return card
}
