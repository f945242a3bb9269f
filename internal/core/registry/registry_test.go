package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thorrester/cardstore/internal/core/codec"
	"github.com/thorrester/cardstore/internal/core/domain"
	"github.com/thorrester/cardstore/internal/core/semver"
	"github.com/thorrester/cardstore/internal/testutil"
)

func newTestRegistry(table domain.RegistryTable) (*Registry, *testutil.FakeRecordStore, *testutil.FakeStorageBackend) {
	store := testutil.NewFakeRecordStore()
	backend := testutil.NewFakeStorageBackend()
	codecs := codec.NewRegistry()
	reg := New(table, store, NewSaverSet(codecs, backend, nil), NewLoaderSet(codecs, backend))
	return reg, store, backend
}

func newDataCard(t *testing.T, name string) *domain.DataCard {
	t.Helper()
	card, err := domain.NewDataCard(name, "analytics", nil)
	assert.NoError(t, err)
	card.Data = sampleTable()
	return card
}

func TestRegistry_RegisterCard_FreshStartsAtBase(t *testing.T) {
	reg, store, backend := newTestRegistry(domain.TableData)
	ctx := context.Background()

	card := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, card, RegisterOpts{}))

	assert.Equal(t, "1.0.0", card.Version)
	assert.NotEmpty(t, card.UID)
	assert.Equal(t, 1, store.Count(domain.TableData))
	assert.Equal(t, 1, backend.Puts["card_data_registry/analytics/cities/v-1.0.0/data.table.json"])
	assert.Equal(t, 1, backend.Puts["card_data_registry/analytics/cities/v-1.0.0/card.json"])
}

func TestRegistry_RegisterCard_MinorBump(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))

	second := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, second, RegisterOpts{VersionType: semver.Minor}))
	assert.Equal(t, "1.1.0", second.Version)

	third := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, third, RegisterOpts{VersionType: semver.Major}))
	assert.Equal(t, "2.0.0", third.Version)
}

func TestRegistry_RegisterCard_ExplicitOutOfOrder(t *testing.T) {
	reg, store, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))

	err := reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{
		Version: &semver.CardVersion{Version: "0.9.0"},
	})
	assert.ErrorIs(t, err, domain.ErrVersionOutOfOrder)
	assert.Equal(t, 1, store.Count(domain.TableData))
}

func TestRegistry_RegisterCard_DuplicateUID(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	card := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, card, RegisterOpts{}))

	again := newDataCard(t, "cities")
	again.UID = card.UID
	err := reg.RegisterCard(ctx, again, RegisterOpts{})
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
}

func TestRegistry_RegisterCard_TypeMismatch(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableModel)

	err := reg.RegisterCard(context.Background(), newDataCard(t, "cities"), RegisterOpts{})
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestRegistry_RegisterCard_OwnershipConflict(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))

	other, err := domain.NewDataCard("cities", "other-team", nil)
	assert.NoError(t, err)
	other.Data = sampleTable()

	err = reg.RegisterCard(ctx, other, RegisterOpts{})
	assert.ErrorIs(t, err, domain.ErrOwnershipConflict)
}

func TestRegistry_RegisterCard_SaveFailureLeavesNoRecord(t *testing.T) {
	store := testutil.NewFakeRecordStore()
	backend := new(testutil.MockStorageBackend)
	backend.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	codecs := codec.NewRegistry()
	reg := New(domain.TableData, store, NewSaverSet(codecs, backend, nil), NewLoaderSet(codecs, backend))

	err := reg.RegisterCard(context.Background(), newDataCard(t, "cities"), RegisterOpts{})
	assert.Error(t, err)
	assert.Equal(t, 0, store.Count(domain.TableData))
}

func TestRegistry_RegisterCard_VersionConflictSurfaced(t *testing.T) {
	store := new(testutil.MockRecordStore)
	store.On("Query", mock.Anything, domain.TableData, mock.Anything).Return([]*domain.CardRecord{}, nil)
	store.On("Insert", mock.Anything, domain.TableData, mock.Anything).Return(domain.ErrVersionConflict)
	backend := testutil.NewFakeStorageBackend()
	codecs := codec.NewRegistry()
	reg := New(domain.TableData, store, NewSaverSet(codecs, backend, nil), NewLoaderSet(codecs, backend))

	err := reg.RegisterCard(context.Background(), newDataCard(t, "cities"), RegisterOpts{})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestRegistry_RegisterCard_PreTag(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))

	rc := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, rc, RegisterOpts{
		Version: &semver.CardVersion{PreTag: "rc.1"},
	}))
	assert.Equal(t, "1.1.0-rc.1", rc.Version)
}

func TestRegistry_RegisterCard_IgnoreReleaseCandidates(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))
	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{
		Version: &semver.CardVersion{PreTag: "rc.1"},
	}))

	// 1.1.0-rc.1 is invisible to the bump: the next final release is
	// allocated from 1.0.0.
	final := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, final, RegisterOpts{IgnoreReleaseCandidates: true}))
	assert.Equal(t, "1.1.0", final.Version)
}

func TestRegistry_UpdateCard(t *testing.T) {
	reg, _, backend := newTestRegistry(domain.TableData)
	ctx := context.Background()

	card := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, card, RegisterOpts{}))

	card.AddTag("stage", "prod")
	assert.NoError(t, reg.UpdateCard(ctx, card))

	rec, err := reg.LoadCard(ctx, domain.CardFilter{UID: card.UID})
	assert.NoError(t, err)
	assert.Equal(t, "prod", rec.Identity().Tags["stage"])

	// Data slot untouched, card blob rewritten.
	assert.Equal(t, 1, backend.Puts["card_data_registry/analytics/cities/v-1.0.0/data.table.json"])
	assert.Equal(t, 2, backend.Puts["card_data_registry/analytics/cities/v-1.0.0/card.json"])
}

func TestRegistry_UpdateCard_Unregistered(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)

	err := reg.UpdateCard(context.Background(), newDataCard(t, "cities"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegistry_ListCards_SortedAndFiltered(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	for _, opts := range []RegisterOpts{
		{},
		{VersionType: semver.Minor},
		{Version: &semver.CardVersion{PreTag: "rc.1"}},
		{VersionType: semver.Major},
	} {
		assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), opts))
	}

	records, err := reg.ListCards(ctx, domain.CardFilter{Name: "cities"})
	assert.NoError(t, err)
	assert.Len(t, records, 4)
	assert.Equal(t, "2.0.0", records[0].Version)

	records, err = reg.ListCards(ctx, domain.CardFilter{Name: "cities", IgnoreReleaseCandidates: true})
	assert.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = reg.ListCards(ctx, domain.CardFilter{Name: "cities", Version: "^1.0.0"})
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "1.1.0", records[0].Version)

	records, err = reg.ListCards(ctx, domain.CardFilter{Name: "cities", Limit: 2})
	assert.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRegistry_LoadCard_HighestVersionWins(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))
	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))

	card, err := reg.LoadCard(ctx, domain.CardFilter{Name: "cities"})
	assert.NoError(t, err)
	assert.Equal(t, "1.1.0", card.Identity().Version)

	loaded, ok := card.(*domain.DataCard)
	assert.True(t, ok)
	assert.Nil(t, loaded.Data)
	assert.NotEmpty(t, loaded.URIs.DataURI)
}

func TestRegistry_LoadCard_NotFound(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)

	_, err := reg.LoadCard(context.Background(), domain.CardFilter{Name: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_DeleteCard(t *testing.T) {
	reg, store, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	card := newDataCard(t, "cities")
	assert.NoError(t, reg.RegisterCard(ctx, card, RegisterOpts{}))

	assert.NoError(t, reg.DeleteCard(ctx, card.UID))
	assert.Equal(t, 0, store.Count(domain.TableData))

	assert.ErrorIs(t, reg.DeleteCard(ctx, card.UID), domain.ErrNotFound)
	assert.ErrorIs(t, reg.DeleteCard(ctx, ""), domain.ErrValidation)
}

func TestRegistry_ListTeamsAndNames(t *testing.T) {
	reg, _, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "cities"), RegisterOpts{}))
	assert.NoError(t, reg.RegisterCard(ctx, newDataCard(t, "forecast"), RegisterOpts{}))

	teams, err := reg.ListTeams(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"analytics"}, teams)

	names, err := reg.ListCardNames(ctx, "Analytics")
	assert.NoError(t, err)
	assert.Equal(t, []string{"cities", "forecast"}, names)
}

func TestRegistry_RegisterRecord(t *testing.T) {
	reg, store, _ := newTestRegistry(domain.TableData)
	ctx := context.Background()

	rec := &domain.CardRecord{Name: "Remote Data", Team: "Analytics", DataURI: "staged/data.table.json"}
	assert.NoError(t, reg.RegisterRecord(ctx, rec, RegisterOpts{}))

	assert.Equal(t, "remote-data", rec.Name)
	assert.Equal(t, "1.0.0", rec.Version)
	assert.NotEmpty(t, rec.UID)
	assert.Equal(t, 1, store.Count(domain.TableData))

	err := reg.RegisterRecord(ctx, &domain.CardRecord{Team: "analytics"}, RegisterOpts{})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCardFromRecord_AllTypes(t *testing.T) {
	rec := &domain.CardRecord{Name: "x", Team: "y", Version: "1.0.0"}

	for cardType, table := range domain.Tables {
		card, err := CardFromRecord(table, rec)
		assert.NoError(t, err)
		assert.Equal(t, cardType, card.CardType())
	}
}
