package domain

import "time"

// Metric is a named value logged against a run, optionally at a step.
type Metric struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Step      int     `json:"step,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// Param is a named hyperparameter logged against a run.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RunCard records an experiment run: metrics, parameters and any extra
// artifacts logged during the run.
type RunCard struct {
	CardIdentity

	Metrics map[string][]Metric `json:"metrics,omitempty"`
	Params  map[string][]Param  `json:"parameters,omitempty"`

	// Artifacts holds payloads logged during the run, keyed by name.
	// Persisted individually; ArtifactURIs records where each one went.
	Artifacts    map[string][]byte `json:"-"`
	ArtifactURIs map[string]string `json:"artifact_uris,omitempty"`

	RunCardURI string `json:"runcard_uri,omitempty"`

	DataCardUIDs    []string `json:"datacard_uids,omitempty"`
	ModelCardUIDs   []string `json:"modelcard_uids,omitempty"`
	PipelineCardUID string   `json:"pipelinecard_uid,omitempty"`
}

// NewRunCard constructs an unregistered RunCard, merging info overrides.
func NewRunCard(name, team string, info *CardInfo) (*RunCard, error) {
	card := &RunCard{CardIdentity: CardIdentity{Name: name, Team: team}}
	card.ApplyInfo(info)
	if err := card.Clean(); err != nil {
		return nil, err
	}
	return card, nil
}

// LogMetric appends a metric observation to the run.
func (c *RunCard) LogMetric(name string, value float64, step int) {
	if c.Metrics == nil {
		c.Metrics = make(map[string][]Metric)
	}
	c.Metrics[name] = append(c.Metrics[name], Metric{
		Name:      name,
		Value:     value,
		Step:      step,
		Timestamp: time.Now().UnixMilli(),
	})
}

// LogParameter records a hyperparameter on the run.
func (c *RunCard) LogParameter(name, value string) {
	if c.Params == nil {
		c.Params = make(map[string][]Param)
	}
	c.Params[name] = append(c.Params[name], Param{Name: name, Value: value})
}

// LogArtifact attaches a named payload to the run for persistence at
// registration time.
func (c *RunCard) LogArtifact(name string, payload []byte) {
	if c.Artifacts == nil {
		c.Artifacts = make(map[string][]byte)
	}
	c.Artifacts[name] = payload
}

func (c *RunCard) Identity() *CardIdentity { return &c.CardIdentity }
func (c *RunCard) CardType() CardType      { return CardTypeRun }

func (c *RunCard) Record() *CardRecord {
	return &CardRecord{
		UID:             c.UID,
		Name:            c.Name,
		Team:            c.Team,
		Email:           c.Email,
		Version:         c.Version,
		Tags:            c.Tags,
		CreatedAt:       c.CreatedAt,
		RunCardURI:      c.RunCardURI,
		ArtifactURIs:    c.ArtifactURIs,
		DataCardUIDs:    c.DataCardUIDs,
		ModelCardUIDs:   c.ModelCardUIDs,
		PipelineCardUID: c.PipelineCardUID,
	}
}

// RunCardFromRecord materializes a RunCard from a stored record. Metrics
// and params live in the runcard blob and are pulled by the loader.
func RunCardFromRecord(rec *CardRecord) *RunCard {
	return &RunCard{
		CardIdentity:    identityFromRecord(rec),
		RunCardURI:      rec.RunCardURI,
		ArtifactURIs:    rec.ArtifactURIs,
		DataCardUIDs:    rec.DataCardUIDs,
		ModelCardUIDs:   rec.ModelCardUIDs,
		PipelineCardUID: rec.PipelineCardUID,
	}
}
