package domain

import "fmt"

// PipelineCard links the data, model and run cards that make up a pipeline.
type PipelineCard struct {
	CardIdentity

	PipelineCode string `json:"pipeline_code_uri,omitempty"`

	DataCardUIDs  []string `json:"datacard_uids,omitempty"`
	ModelCardUIDs []string `json:"modelcard_uids,omitempty"`
	RunCardUIDs   []string `json:"runcard_uids,omitempty"`
}

// NewPipelineCard constructs an unregistered PipelineCard.
func NewPipelineCard(name, team string, info *CardInfo) (*PipelineCard, error) {
	card := &PipelineCard{CardIdentity: CardIdentity{Name: name, Team: team}}
	card.ApplyInfo(info)
	if err := card.Clean(); err != nil {
		return nil, err
	}
	return card, nil
}

// AddCardUID links a registered card of the given type into the pipeline.
func (c *PipelineCard) AddCardUID(cardType CardType, uid string) error {
	switch cardType {
	case CardTypeData:
		c.DataCardUIDs = append(c.DataCardUIDs, uid)
	case CardTypeModel:
		c.ModelCardUIDs = append(c.ModelCardUIDs, uid)
	case CardTypeRun:
		c.RunCardUIDs = append(c.RunCardUIDs, uid)
	default:
		return fmt.Errorf("%w: cannot link %s card into a pipeline", ErrValidation, cardType)
	}
	return nil
}

func (c *PipelineCard) Identity() *CardIdentity { return &c.CardIdentity }
func (c *PipelineCard) CardType() CardType      { return CardTypePipeline }

func (c *PipelineCard) Record() *CardRecord {
	return &CardRecord{
		UID:           c.UID,
		Name:          c.Name,
		Team:          c.Team,
		Email:         c.Email,
		Version:       c.Version,
		Tags:          c.Tags,
		CreatedAt:     c.CreatedAt,
		DataCardUIDs:  c.DataCardUIDs,
		ModelCardUIDs: c.ModelCardUIDs,
		RunCardUIDs:   c.RunCardUIDs,
	}
}

// PipelineCardFromRecord materializes a PipelineCard from a stored record.
func PipelineCardFromRecord(rec *CardRecord) *PipelineCard {
	return &PipelineCard{
		CardIdentity:  identityFromRecord(rec),
		DataCardUIDs:  rec.DataCardUIDs,
		ModelCardUIDs: rec.ModelCardUIDs,
		RunCardUIDs:   rec.RunCardUIDs,
	}
}

// ProjectCard groups cards under a project id.
type ProjectCard struct {
	CardIdentity

	ProjectID string `json:"project_id,omitempty"`
}

// NewProjectCard constructs an unregistered ProjectCard.
func NewProjectCard(name, team string, info *CardInfo) (*ProjectCard, error) {
	card := &ProjectCard{CardIdentity: CardIdentity{Name: name, Team: team}}
	card.ApplyInfo(info)
	if err := card.Clean(); err != nil {
		return nil, err
	}
	card.ProjectID = card.Team + ":" + card.Name
	return card, nil
}

func (c *ProjectCard) Identity() *CardIdentity { return &c.CardIdentity }
func (c *ProjectCard) CardType() CardType      { return CardTypeProject }

func (c *ProjectCard) Record() *CardRecord {
	return &CardRecord{
		UID:       c.UID,
		Name:      c.Name,
		Team:      c.Team,
		Email:     c.Email,
		Version:   c.Version,
		Tags:      c.Tags,
		CreatedAt: c.CreatedAt,
		ProjectID: c.ProjectID,
	}
}

// ProjectCardFromRecord materializes a ProjectCard from a stored record.
func ProjectCardFromRecord(rec *CardRecord) *ProjectCard {
	return &ProjectCard{CardIdentity: identityFromRecord(rec), ProjectID: rec.ProjectID}
}

// AuditSection is one answered section of an audit questionnaire.
type AuditSection struct {
	Topic     string            `json:"topic"`
	Responses map[string]string `json:"responses,omitempty"`
}

// AuditCard captures governance review answers for a registered model.
type AuditCard struct {
	CardIdentity

	Sections []AuditSection `json:"sections,omitempty"`
	AuditURI string         `json:"audit_uri,omitempty"`
}

// NewAuditCard constructs an unregistered AuditCard.
func NewAuditCard(name, team string, info *CardInfo) (*AuditCard, error) {
	card := &AuditCard{CardIdentity: CardIdentity{Name: name, Team: team}}
	card.ApplyInfo(info)
	if err := card.Clean(); err != nil {
		return nil, err
	}
	return card, nil
}

func (c *AuditCard) Identity() *CardIdentity { return &c.CardIdentity }
func (c *AuditCard) CardType() CardType      { return CardTypeAudit }

func (c *AuditCard) Record() *CardRecord {
	return &CardRecord{
		UID:       c.UID,
		Name:      c.Name,
		Team:      c.Team,
		Email:     c.Email,
		Version:   c.Version,
		Tags:      c.Tags,
		CreatedAt: c.CreatedAt,
		AuditURI:  c.AuditURI,
	}
}

// AuditCardFromRecord materializes an AuditCard from a stored record.
func AuditCardFromRecord(rec *CardRecord) *AuditCard {
	return &AuditCard{CardIdentity: identityFromRecord(rec), AuditURI: rec.AuditURI}
}
