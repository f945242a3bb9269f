package registry

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
	"github.com/thorrester/cardstore/internal/core/semver"
)

// RegisterOpts tunes version allocation for RegisterCard.
type RegisterOpts struct {
	// VersionType picks the component to bump. Defaults to minor.
	VersionType semver.VersionType

	// Version optionally pins an explicit version or queries a range.
	Version *semver.CardVersion

	// SavePath overrides the storage directory artifacts are written
	// under. Defaults to {table}/{team}/{name}/v-{version}.
	SavePath string

	// IgnoreReleaseCandidates resolves the next version against final
	// releases only, as if pre-release versions were never registered.
	IgnoreReleaseCandidates bool
}

// Registry owns the card lifecycle for one table: version allocation, uid
// assignment, artifact persistence and the metadata record. Within one
// RegisterCard call artifact saves always complete before the record write
// is issued; a failure at any point leaves the record store untouched.
//
// Version allocation holds no locks: two concurrent registrations for the
// same (name, team) can resolve the same next version. The record store's
// uniqueness constraint on (name, team, version) breaks the tie and the
// loser receives ErrVersionConflict; retrying the whole RegisterCard call
// is safe because populated URI slots are skipped on re-save.
type Registry struct {
	table   domain.RegistryTable
	store   ports.RecordStore
	savers  *SaverSet
	loaders *LoaderSet
}

// New constructs a registry for one table with explicitly injected
// collaborators.
func New(table domain.RegistryTable, store ports.RecordStore, savers *SaverSet, loaders *LoaderSet) *Registry {
	return &Registry{table: table, store: store, savers: savers, loaders: loaders}
}

// Table returns the table descriptor this registry serves.
func (r *Registry) Table() domain.RegistryTable { return r.table }

// Loaders exposes the per-variant artifact loaders for lazy payload pulls.
func (r *Registry) Loaders() *LoaderSet { return r.loaders }

// RegisterCard validates the card, allocates its version and uid, persists
// its artifacts and writes the metadata record.
func (r *Registry) RegisterCard(ctx context.Context, card domain.Card, opts RegisterOpts) error {
	if err := r.validateCard(ctx, card); err != nil {
		return err
	}

	id := card.Identity()
	version, err := r.resolveVersion(ctx, id.Name, id.Team, opts)
	if err != nil {
		return err
	}
	id.Version = version
	if id.UID == "" {
		id.UID = domain.NewUID()
	}
	if id.CreatedAt.IsZero() {
		id.CreatedAt = time.Now().UTC()
	}

	baseDir := opts.SavePath
	if baseDir == "" {
		baseDir = id.URI(r.table)
	}

	saver, err := r.savers.For(card.CardType())
	if err != nil {
		return err
	}
	if _, err := saver.SaveArtifacts(ctx, card, baseDir); err != nil {
		return fmt.Errorf("save artifacts for %s/%s/%s v%s: %w",
			r.table.Name, id.Team, id.Name, id.Version, err)
	}

	if err := r.store.Insert(ctx, r.table, card.Record()); err != nil {
		return fmt.Errorf("insert record for %s/%s/%s v%s (uid %s): %w",
			r.table.Name, id.Team, id.Name, id.Version, id.UID, err)
	}

	log.WithFields(log.Fields{
		"table":   r.table.Name,
		"name":    id.Name,
		"team":    id.Team,
		"version": id.Version,
		"uid":     id.UID,
	}).Info("card registered")
	return nil
}

// RegisterRecord allocates a version and uid for a record whose artifacts
// were already persisted elsewhere and inserts it. This is the server-side
// half of remote registration: clients stage blobs through the file proxy
// and submit the finished record here.
func (r *Registry) RegisterRecord(ctx context.Context, rec *domain.CardRecord, opts RegisterOpts) error {
	rec.Name = domain.CleanIdentifier(rec.Name)
	rec.Team = domain.CleanIdentifier(rec.Team)
	if rec.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidName)
	}
	if rec.Team == "" {
		return fmt.Errorf("%w: team is required", domain.ErrInvalidTeam)
	}
	if rec.UID != "" {
		exists, err := r.store.Exists(ctx, r.table, rec.UID)
		if err != nil {
			return fmt.Errorf("check uid %s in %s: %w", rec.UID, r.table.Name, err)
		}
		if exists {
			return fmt.Errorf("%w: uid %s in %s", domain.ErrDuplicateRegistration, rec.UID, r.table.Name)
		}
	}

	version, err := r.resolveVersion(ctx, rec.Name, rec.Team, opts)
	if err != nil {
		return err
	}
	rec.Version = version
	if rec.UID == "" {
		rec.UID = domain.NewUID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := r.store.Insert(ctx, r.table, rec); err != nil {
		return fmt.Errorf("insert record for %s/%s/%s v%s (uid %s): %w",
			r.table.Name, rec.Team, rec.Name, rec.Version, rec.UID, err)
	}

	log.WithFields(log.Fields{
		"table":   r.table.Name,
		"name":    rec.Name,
		"team":    rec.Team,
		"version": rec.Version,
		"uid":     rec.UID,
	}).Info("card record registered")
	return nil
}

// UpdateCard re-saves artifacts and rewrites the metadata record for an
// already-registered card, keyed by uid. The version is not re-resolved.
func (r *Registry) UpdateCard(ctx context.Context, card domain.Card) error {
	if card.CardType() != r.table.CardType {
		return fmt.Errorf("%w: %s card in %s", domain.ErrTypeMismatch, card.CardType(), r.table.Name)
	}
	id := card.Identity()
	if id.UID == "" || id.Version == "" {
		return fmt.Errorf("%w: card has no uid/version; register it first", domain.ErrValidation)
	}

	exists, err := r.store.Exists(ctx, r.table, id.UID)
	if err != nil {
		return fmt.Errorf("check uid %s in %s: %w", id.UID, r.table.Name, err)
	}
	if !exists {
		return fmt.Errorf("%w: uid %s in %s", domain.ErrNotFound, id.UID, r.table.Name)
	}

	saver, err := r.savers.For(card.CardType())
	if err != nil {
		return err
	}
	if _, err := saver.SaveArtifacts(ctx, card, id.URI(r.table)); err != nil {
		return fmt.Errorf("save artifacts for uid %s: %w", id.UID, err)
	}

	if err := r.store.Update(ctx, r.table, id.UID, card.Record()); err != nil {
		return fmt.Errorf("update record for uid %s in %s: %w", id.UID, r.table.Name, err)
	}

	log.WithFields(log.Fields{
		"table": r.table.Name,
		"name":  id.Name,
		"uid":   id.UID,
	}).Info("card updated")
	return nil
}

// UpdateRecord rewrites an existing metadata record keyed by uid, without
// touching artifacts. Remote clients re-save artifacts through the file
// proxy before submitting the updated record.
func (r *Registry) UpdateRecord(ctx context.Context, rec *domain.CardRecord) error {
	if rec.UID == "" || rec.Version == "" {
		return fmt.Errorf("%w: record has no uid/version; register it first", domain.ErrValidation)
	}
	if err := r.store.Update(ctx, r.table, rec.UID, rec); err != nil {
		return fmt.Errorf("update record for uid %s in %s: %w", rec.UID, r.table.Name, err)
	}
	log.WithFields(log.Fields{"table": r.table.Name, "uid": rec.UID}).Info("card record updated")
	return nil
}

// DeleteCard removes a card's metadata record. Blobs are left for garbage
// collection.
func (r *Registry) DeleteCard(ctx context.Context, uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", domain.ErrValidation)
	}
	if err := r.store.Delete(ctx, r.table, uid); err != nil {
		return fmt.Errorf("delete uid %s from %s: %w", uid, r.table.Name, err)
	}
	log.WithFields(log.Fields{"table": r.table.Name, "uid": uid}).Info("card deleted")
	return nil
}

// ListCards queries records. When a name filter is present results come
// back sorted by semver descending; version range patterns are resolved
// in-memory and return only the top match.
func (r *Registry) ListCards(ctx context.Context, filter domain.CardFilter) ([]*domain.CardRecord, error) {
	filter = filter.Clean()

	storeFilter := filter
	versionPattern := ""
	if filter.Version != "" && semver.IsPattern(filter.Version) {
		versionPattern = filter.Version
		storeFilter.Version = ""
	}
	// Range and rc filtering happen after the query; the limit must not
	// truncate candidates first.
	storeFilter.Limit = 0

	records, err := r.store.Query(ctx, r.table, storeFilter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table.Name, err)
	}

	if versionPattern != "" {
		records, err = filterByPattern(records, versionPattern)
		if err != nil {
			return nil, err
		}
	}
	if filter.IgnoreReleaseCandidates {
		records = dropReleaseCandidates(records)
	}
	if filter.Name != "" {
		if records, err = sortByVersion(records); err != nil {
			return nil, err
		}
	}
	if versionPattern != "" && len(records) > 1 {
		records = records[:1]
	}
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

// LoadCard resolves exactly one record and materializes a card from it.
// When the filter matches several records the highest version wins; heavy
// payloads stay absent until a loader pulls them.
func (r *Registry) LoadCard(ctx context.Context, filter domain.CardFilter) (domain.Card, error) {
	filter.Limit = 1
	records, err := r.ListCards(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s name=%q team=%q version=%q uid=%q",
			domain.ErrNotFound, r.table.Name, filter.Name, filter.Team, filter.Version, filter.UID)
	}
	return CardFromRecord(r.table, records[0])
}

// ListTeams returns the distinct teams registered in this table.
func (r *Registry) ListTeams(ctx context.Context) ([]string, error) {
	return r.store.ListTeams(ctx, r.table)
}

// ListCardNames returns the distinct card names in this table, optionally
// scoped to a team.
func (r *Registry) ListCardNames(ctx context.Context, team string) ([]string, error) {
	return r.store.ListNames(ctx, r.table, domain.CleanIdentifier(team))
}

func (r *Registry) validateCard(ctx context.Context, card domain.Card) error {
	if card.CardType() != r.table.CardType {
		return fmt.Errorf("%w: %s card cannot be registered in %s",
			domain.ErrTypeMismatch, card.CardType(), r.table.Name)
	}
	if err := card.Identity().Clean(); err != nil {
		return err
	}

	if uid := card.Identity().UID; uid != "" {
		exists, err := r.store.Exists(ctx, r.table, uid)
		if err != nil {
			return fmt.Errorf("check uid %s in %s: %w", uid, r.table.Name, err)
		}
		if exists {
			return fmt.Errorf("%w: uid %s in %s", domain.ErrDuplicateRegistration, uid, r.table.Name)
		}
	}
	return nil
}

// resolveVersion queries the version history for the name and allocates
// the next version. Names are globally unique across teams: a history
// owned by another team is an ownership conflict, not a fresh sequence.
func (r *Registry) resolveVersion(ctx context.Context, name, team string, opts RegisterOpts) (string, error) {
	records, err := r.store.Query(ctx, r.table, domain.CardFilter{Name: name})
	if err != nil {
		return "", fmt.Errorf("query versions for %s/%s: %w", r.table.Name, name, err)
	}

	versions := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Team != team {
			return "", fmt.Errorf("%w: %q is owned by team %q", domain.ErrOwnershipConflict, name, rec.Team)
		}
		if opts.IgnoreReleaseCandidates && semver.IsReleaseCandidate(rec.Version) {
			continue
		}
		versions = append(versions, rec.Version)
	}

	versionType := opts.VersionType
	if versionType == "" {
		versionType = semver.Minor
	}
	return semver.NextVersion(versions, versionType, opts.Version)
}

// CardFromRecord materializes the card variant a table stores from one of
// its records.
func CardFromRecord(table domain.RegistryTable, rec *domain.CardRecord) (domain.Card, error) {
	switch table.CardType {
	case domain.CardTypeData:
		return domain.DataCardFromRecord(rec), nil
	case domain.CardTypeModel:
		return domain.ModelCardFromRecord(rec), nil
	case domain.CardTypeRun:
		return domain.RunCardFromRecord(rec), nil
	case domain.CardTypePipeline:
		return domain.PipelineCardFromRecord(rec), nil
	case domain.CardTypeProject:
		return domain.ProjectCardFromRecord(rec), nil
	case domain.CardTypeAudit:
		return domain.AuditCardFromRecord(rec), nil
	default:
		return nil, fmt.Errorf("%w: unknown card type %s", domain.ErrTypeMismatch, table.CardType)
	}
}

func filterByPattern(records []*domain.CardRecord, pattern string) ([]*domain.CardRecord, error) {
	matched := records[:0:0]
	for _, rec := range records {
		ok, err := semver.Matches(rec.Version, pattern)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

func dropReleaseCandidates(records []*domain.CardRecord) []*domain.CardRecord {
	kept := records[:0:0]
	for _, rec := range records {
		if !semver.IsReleaseCandidate(rec.Version) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func sortByVersion(records []*domain.CardRecord) ([]*domain.CardRecord, error) {
	versions := make([]string, len(records))
	for i, rec := range records {
		versions[i] = rec.Version
	}
	sorted, err := semver.SortDesc(versions)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string][]*domain.CardRecord, len(records))
	for _, rec := range records {
		byVersion[rec.Version] = append(byVersion[rec.Version], rec)
	}
	out := make([]*domain.CardRecord, 0, len(records))
	for _, v := range sorted {
		bucket := byVersion[v]
		out = append(out, bucket[0])
		byVersion[v] = bucket[1:]
	}
	return out, nil
}
