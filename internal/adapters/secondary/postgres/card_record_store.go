package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

// cardRecordStore persists card records in one postgres table per
// registry. Identity columns are first-class for filtering; the full
// record rides in a jsonb document so every card variant shares one
// schema. Each table carries a unique constraint on (name, team, version)
// - the registry's defense against concurrent registrations racing on the
// same next version - and a primary key on uid.
type cardRecordStore struct {
	pool *pgxpool.Pool
}

// NewCardRecordStore returns a RecordStore backed by a pgx pool.
func NewCardRecordStore(pool *pgxpool.Pool) ports.RecordStore {
	return &cardRecordStore{pool: pool}
}

func (s *cardRecordStore) Insert(ctx context.Context, table domain.RegistryTable, rec *domain.CardRecord) error {
	contents, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (uid, name, team, user_email, version, tags, created_at, contents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, table.Name)
	_, err = s.pool.Exec(ctx, query,
		rec.UID, rec.Name, rec.Team, rec.Email, rec.Version, tags, rec.CreatedAt, contents,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "pkey") {
				return domain.ErrDuplicateRegistration
			}
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("insert card record: %w", err)
	}
	return nil
}

func (s *cardRecordStore) Update(ctx context.Context, table domain.RegistryTable, uid string, rec *domain.CardRecord) error {
	contents, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, team = $3, user_email = $4, version = $5, tags = $6, contents = $7
		WHERE uid = $1
	`, table.Name)
	tag, err := s.pool.Exec(ctx, query, uid, rec.Name, rec.Team, rec.Email, rec.Version, tags, contents)
	if err != nil {
		return fmt.Errorf("update card record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *cardRecordStore) Query(ctx context.Context, table domain.RegistryTable, filter domain.CardFilter) ([]*domain.CardRecord, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UID != "" {
		add("uid = $%d", filter.UID)
	}
	if filter.Name != "" {
		add("name = $%d", filter.Name)
	}
	if filter.Team != "" {
		add("team = $%d", filter.Team)
	}
	if filter.Version != "" {
		add("version = $%d", filter.Version)
	}
	if len(filter.Tags) > 0 {
		tags, err := json.Marshal(filter.Tags)
		if err != nil {
			return nil, fmt.Errorf("marshal tag filter: %w", err)
		}
		add("tags @> $%d::jsonb", tags)
	}
	if filter.MaxDate != "" {
		add("created_at < ($%d::date + 1)", filter.MaxDate)
	}

	query := fmt.Sprintf("SELECT contents FROM %s", table.Name)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query card records: %w", err)
	}
	defer rows.Close()

	var records []*domain.CardRecord
	for rows.Next() {
		var contents []byte
		if err := rows.Scan(&contents); err != nil {
			return nil, fmt.Errorf("scan card record: %w", err)
		}
		rec := &domain.CardRecord{}
		if err := json.Unmarshal(contents, rec); err != nil {
			return nil, fmt.Errorf("unmarshal card record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card records: %w", err)
	}
	return records, nil
}

func (s *cardRecordStore) Exists(ctx context.Context, table domain.RegistryTable, uid string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE uid = $1)", table.Name)
	var exists bool
	if err := s.pool.QueryRow(ctx, query, uid).Scan(&exists); err != nil {
		return false, fmt.Errorf("check uid: %w", err)
	}
	return exists, nil
}

func (s *cardRecordStore) Delete(ctx context.Context, table domain.RegistryTable, uid string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE uid = $1", table.Name)
	tag, err := s.pool.Exec(ctx, query, uid)
	if err != nil {
		return fmt.Errorf("delete card record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *cardRecordStore) ListTeams(ctx context.Context, table domain.RegistryTable) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT team FROM %s ORDER BY team", table.Name)
	return s.listStrings(ctx, query)
}

func (s *cardRecordStore) ListNames(ctx context.Context, table domain.RegistryTable, team string) ([]string, error) {
	if team == "" {
		query := fmt.Sprintf("SELECT DISTINCT name FROM %s ORDER BY name", table.Name)
		return s.listStrings(ctx, query)
	}
	query := fmt.Sprintf("SELECT DISTINCT name FROM %s WHERE team = $1 ORDER BY name", table.Name)
	return s.listStrings(ctx, query, team)
}

func (s *cardRecordStore) listStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distinct values: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct value: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distinct values: %w", err)
	}
	return out, nil
}
