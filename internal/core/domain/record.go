package domain

import "time"

// CardRecord is the flat metadata row persisted for a card. One shape
// serves every registry table; variant-specific columns are simply empty
// for the variants that do not use them. Records returned by ListCards are
// read-only snapshots; materializing a full card from a record is an
// explicit step (Registry.LoadCard).
type CardRecord struct {
	UID       string            `json:"uid"`
	Name      string            `json:"name"`
	Team      string            `json:"team"`
	Email     string            `json:"user_email,omitempty"`
	Version   string            `json:"version"`
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"created_at"`

	// DataCard columns.
	DataURI        string     `json:"data_uri,omitempty"`
	ProfileURI     string     `json:"profile_uri,omitempty"`
	ProfileHTMLURI string     `json:"profile_html_uri,omitempty"`
	DataCardURI    string     `json:"datacard_uri,omitempty"`
	FeatureMap     FeatureMap `json:"feature_map,omitempty"`

	// ModelCard columns.
	TrainedModelURI  string `json:"trained_model_uri,omitempty"`
	SampleDataURI    string `json:"sample_data_uri,omitempty"`
	PreprocessorURI  string `json:"preprocessor_uri,omitempty"`
	OnnxModelURI     string `json:"onnx_model_uri,omitempty"`
	ModelMetadataURI string `json:"model_metadata_uri,omitempty"`
	ModelCardURI     string `json:"modelcard_uri,omitempty"`
	Framework        string `json:"model_framework,omitempty"`

	// RunCard columns.
	RunCardURI      string            `json:"runcard_uri,omitempty"`
	ArtifactURIs    map[string]string `json:"artifact_uris,omitempty"`
	DataCardUIDs    []string          `json:"datacard_uids,omitempty"`
	ModelCardUIDs   []string          `json:"modelcard_uids,omitempty"`
	RunCardUIDs     []string          `json:"runcard_uids,omitempty"`
	PipelineCardUID string            `json:"pipelinecard_uid,omitempty"`

	// ProjectCard columns.
	ProjectID string `json:"project_id,omitempty"`

	// AuditCard columns.
	AuditURI string `json:"audit_uri,omitempty"`
}

// CardFilter narrows ListCards queries. A zero filter matches everything.
type CardFilter struct {
	UID     string
	Name    string
	Team    string
	Version string // exact version or a range pattern (^, ~, *)
	Tags    map[string]string
	MaxDate string // inclusive upper bound, "YYYY-MM-DD"
	Limit   int

	// IgnoreReleaseCandidates drops pre-release versions from results.
	IgnoreReleaseCandidates bool
}

// Clean normalizes the name and team filter terms the same way card
// identities are normalized.
func (f CardFilter) Clean() CardFilter {
	f.Name = CleanIdentifier(f.Name)
	f.Team = CleanIdentifier(f.Team)
	return f
}
