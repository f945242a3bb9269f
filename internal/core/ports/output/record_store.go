package ports

import (
	"context"

	"github.com/thorrester/cardstore/internal/core/domain"
)

// RecordStore is the narrow CRUD contract the registry requires from its
// metadata backend. Implementations must enforce a uniqueness constraint
// on (name, team, version) per table and surface violations as
// domain.ErrVersionConflict; the registry relies on that to resolve
// concurrent registrations racing on the same next version.
type RecordStore interface {
	Insert(ctx context.Context, table domain.RegistryTable, rec *domain.CardRecord) error
	Update(ctx context.Context, table domain.RegistryTable, uid string, rec *domain.CardRecord) error
	Query(ctx context.Context, table domain.RegistryTable, filter domain.CardFilter) ([]*domain.CardRecord, error)
	Exists(ctx context.Context, table domain.RegistryTable, uid string) (bool, error)
	Delete(ctx context.Context, table domain.RegistryTable, uid string) error

	// ListTeams and ListNames return the distinct teams / card names
	// present in a table.
	ListTeams(ctx context.Context, table domain.RegistryTable) ([]string, error)
	ListNames(ctx context.Context, table domain.RegistryTable, team string) ([]string, error)
}
