package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CardType tags the closed set of card variants.
type CardType string

const (
	CardTypeData     CardType = "data"
	CardTypeModel    CardType = "model"
	CardTypeRun      CardType = "run"
	CardTypePipeline CardType = "pipeline"
	CardTypeProject  CardType = "project"
	CardTypeAudit    CardType = "audit"
)

// RegistryTable pairs a storage table identifier with the card variant it
// stores. Carried as two explicit fields so nothing ever parses the table
// name to recover the card type.
type RegistryTable struct {
	Name     string
	CardType CardType
}

var (
	TableData     = RegistryTable{Name: "card_data_registry", CardType: CardTypeData}
	TableModel    = RegistryTable{Name: "card_model_registry", CardType: CardTypeModel}
	TableRun      = RegistryTable{Name: "card_run_registry", CardType: CardTypeRun}
	TablePipeline = RegistryTable{Name: "card_pipeline_registry", CardType: CardTypePipeline}
	TableProject  = RegistryTable{Name: "card_project_registry", CardType: CardTypeProject}
	TableAudit    = RegistryTable{Name: "card_audit_registry", CardType: CardTypeAudit}
)

// Tables lists every registry table, keyed by card type.
var Tables = map[CardType]RegistryTable{
	CardTypeData:     TableData,
	CardTypeModel:    TableModel,
	CardTypeRun:      TableRun,
	CardTypePipeline: TablePipeline,
	CardTypeProject:  TableProject,
	CardTypeAudit:    TableAudit,
}

var identifierCleaner = regexp.MustCompile(`[^a-z0-9\-]`)

// CleanIdentifier normalizes a card name or team: lowercased, spaces and
// underscores collapsed to hyphens, everything outside [a-z0-9-] dropped.
func CleanIdentifier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return identifierCleaner.ReplaceAllString(s, "")
}

// NewUID returns an opaque unique id for a card.
func NewUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CardInfo is an optional bundle of identity overrides supplied at card
// construction. Fields are merged onto the card, never replacing values the
// caller set directly.
type CardInfo struct {
	Name    string
	Team    string
	Email   string
	UID     string
	Version string
}

// CardIdentity is the identity block shared by every card variant. UID and
// Version are empty until first registration and immutable afterwards.
type CardIdentity struct {
	Name      string            `json:"name"`
	Team      string            `json:"team"`
	Email     string            `json:"user_email,omitempty"`
	UID       string            `json:"uid,omitempty"`
	Version   string            `json:"version,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"created_at,omitempty"`
}

// ApplyInfo merges info onto the identity, filling only fields that are
// still unset.
func (id *CardIdentity) ApplyInfo(info *CardInfo) {
	if info == nil {
		return
	}
	if id.Name == "" {
		id.Name = info.Name
	}
	if id.Team == "" {
		id.Team = info.Team
	}
	if id.Email == "" {
		id.Email = info.Email
	}
	if id.UID == "" {
		id.UID = info.UID
	}
	if id.Version == "" {
		id.Version = info.Version
	}
}

// Clean normalizes name and team and validates that both are present.
func (id *CardIdentity) Clean() error {
	id.Name = CleanIdentifier(id.Name)
	id.Team = CleanIdentifier(id.Team)
	if id.Name == "" {
		return ErrInvalidName
	}
	if id.Team == "" {
		return ErrInvalidTeam
	}
	return nil
}

// AddTag sets a tag on the card identity.
func (id *CardIdentity) AddTag(key, value string) {
	if id.Tags == nil {
		id.Tags = make(map[string]string)
	}
	id.Tags[key] = value
}

// URI is the storage directory every artifact belonging to this card is
// written under: {table}/{team}/{name}/v-{version}.
func (id *CardIdentity) URI(table RegistryTable) string {
	return table.Name + "/" + id.Team + "/" + id.Name + "/v-" + id.Version
}

// Card is the contract every card variant satisfies.
type Card interface {
	Identity() *CardIdentity
	CardType() CardType

	// Record produces the metadata row persisted for the card: identity,
	// configuration and artifact URIs, never heavy payloads.
	Record() *CardRecord
}
