package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

// FakeRecordStore is an in-memory RecordStore for round-trip tests. It
// enforces the (name, team, version) uniqueness contract the same way the
// postgres adapter does.
type FakeRecordStore struct {
	mu      sync.Mutex
	records map[string][]*domain.CardRecord
}

func NewFakeRecordStore() *FakeRecordStore {
	return &FakeRecordStore{records: make(map[string][]*domain.CardRecord)}
}

func (f *FakeRecordStore) Insert(ctx context.Context, table domain.RegistryTable, rec *domain.CardRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records[table.Name] {
		if r.UID == rec.UID {
			return domain.ErrDuplicateRegistration
		}
		if r.Name == rec.Name && r.Team == rec.Team && r.Version == rec.Version {
			return domain.ErrVersionConflict
		}
	}
	cp := *rec
	f.records[table.Name] = append(f.records[table.Name], &cp)
	return nil
}

func (f *FakeRecordStore) Update(ctx context.Context, table domain.RegistryTable, uid string, rec *domain.CardRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records[table.Name] {
		if r.UID == uid {
			cp := *rec
			f.records[table.Name][i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *FakeRecordStore) Query(ctx context.Context, table domain.RegistryTable, filter domain.CardFilter) ([]*domain.CardRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.CardRecord
	for _, r := range f.records[table.Name] {
		if !matches(r, filter) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(r *domain.CardRecord, filter domain.CardFilter) bool {
	if filter.UID != "" && r.UID != filter.UID {
		return false
	}
	if filter.Name != "" && r.Name != filter.Name {
		return false
	}
	if filter.Team != "" && r.Team != filter.Team {
		return false
	}
	if filter.Version != "" && r.Version != filter.Version {
		return false
	}
	for k, v := range filter.Tags {
		if r.Tags[k] != v {
			return false
		}
	}
	return true
}

func (f *FakeRecordStore) Exists(ctx context.Context, table domain.RegistryTable, uid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records[table.Name] {
		if r.UID == uid {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRecordStore) Delete(ctx context.Context, table domain.RegistryTable, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.records[table.Name]
	for i, r := range recs {
		if r.UID == uid {
			f.records[table.Name] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *FakeRecordStore) ListTeams(ctx context.Context, table domain.RegistryTable) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, r := range f.records[table.Name] {
		if !seen[r.Team] {
			seen[r.Team] = true
			out = append(out, r.Team)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *FakeRecordStore) ListNames(ctx context.Context, table domain.RegistryTable, team string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, r := range f.records[table.Name] {
		if team != "" && r.Team != team {
			continue
		}
		if !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r.Name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Count returns the number of records held for a table.
func (f *FakeRecordStore) Count(table domain.RegistryTable) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[table.Name])
}

// FakeStorageBackend keeps blobs in memory keyed by remote path and counts
// writes per path so tests can assert that set artifact slots are not
// re-uploaded.
type FakeStorageBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
	Puts  map[string]int
}

func NewFakeStorageBackend() *FakeStorageBackend {
	return &FakeStorageBackend{
		blobs: make(map[string][]byte),
		Puts:  make(map[string]int),
	}
}

func (f *FakeStorageBackend) Put(ctx context.Context, localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[remotePath] = data
	f.Puts[remotePath]++
	return nil
}

func (f *FakeStorageBackend) Get(ctx context.Context, remotePath, localPath string) error {
	f.mu.Lock()
	data, ok := f.blobs[remotePath]
	f.mu.Unlock()
	if !ok {
		return os.ErrNotExist
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0o644)
}

func (f *FakeStorageBackend) Exists(ctx context.Context, remotePath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[remotePath]
	return ok, nil
}

func (f *FakeStorageBackend) List(ctx context.Context, remoteDir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for p := range f.blobs {
		if strings.HasPrefix(p, remoteDir) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Drop removes a stored blob, simulating an orphaned record whose
// artifact went missing.
func (f *FakeStorageBackend) Drop(remotePath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, remotePath)
}

var _ ports.RecordStore = (*FakeRecordStore)(nil)
var _ ports.StorageBackend = (*FakeStorageBackend)(nil)
