package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/filmdb/contribution-service/internal/model"
)

// MemoryStore is an in-memory Store used by tests and for running the
// service without a database.  A single mutex is held for the whole life
// of a transaction, which trivially satisfies the atomicity and
// serialization guarantees the MySQL implementation provides with row
// locks: concurrent submissions and resolution attempts execute one at a
// time, and a losing resolver no longer sees a WAITING entry.
type MemoryStore struct {
	mu sync.Mutex

	movies        map[uint64]*model.Movie
	users         map[uint64]*model.User
	records       map[uint64]*model.FieldRecord
	contributions map[uint64]*model.Contribution

	nextRecordID       uint64
	nextContributionID uint64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies:             make(map[uint64]*model.Movie),
		users:              make(map[uint64]*model.User),
		records:            make(map[uint64]*model.FieldRecord),
		contributions:      make(map[uint64]*model.Contribution),
		nextRecordID:       1,
		nextContributionID: 1,
	}
}

// SeedMovie inserts a movie directly, bypassing the contribution flow.
func (s *MemoryStore) SeedMovie(m model.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := m
	s.movies[m.ID] = &cp
}

// SeedUser inserts a user directly.
func (s *MemoryStore) SeedUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	cp.Permissions = append(model.PermissionSet(nil), u.Permissions...)
	s.users[u.ID] = &cp
}

// SeedRecord inserts a field record directly and returns its id.
func (s *MemoryStore) SeedRecord(rec model.FieldRecord) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		rec.ID = s.nextRecordID
		s.nextRecordID++
	} else if rec.ID >= s.nextRecordID {
		s.nextRecordID = rec.ID + 1
	}
	if rec.Pending == "" {
		rec.Pending = model.PendingNone
	}
	cp := rec
	s.records[rec.ID] = &cp
	return rec.ID
}

func copyRecord(rec *model.FieldRecord) *model.FieldRecord {
	cp := *rec
	return &cp
}

func copyContribution(c *model.Contribution) *model.Contribution {
	cp := *c
	cp.IDsToAdd = append([]uint64(nil), c.IDsToAdd...)
	cp.IDsToUpdate = append([]uint64(nil), c.IDsToUpdate...)
	cp.IDsToDelete = append([]uint64(nil), c.IDsToDelete...)
	cp.Sources = append([]string(nil), c.Sources...)
	if c.Verification != nil {
		v := *c.Verification
		cp.Verification = &v
	}
	return &cp
}

func (s *MemoryStore) AcceptedMovie(_ context.Context, id uint64) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptedMovieLocked(id)
}

func (s *MemoryStore) acceptedMovieLocked(id uint64) (*model.Movie, error) {
	m, ok := s.movies[id]
	if !ok || m.Status != model.StatusAccepted {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) EnabledUser(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.Enabled {
		return nil, ErrNotFound
	}
	cp := *u
	cp.Permissions = append(model.PermissionSet(nil), u.Permissions...)
	return &cp, nil
}

func (s *MemoryStore) FieldRecord(_ context.Context, id uint64) (*model.FieldRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (s *MemoryStore) AcceptedRecords(_ context.Context, movieID uint64, kind model.FieldKind) ([]model.FieldRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FieldRecord, 0)
	for _, rec := range s.records {
		if rec.MovieID == movieID && rec.Kind == kind && rec.Status == model.StatusAccepted {
			out = append(out, *copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ContributionByField(_ context.Context, id uint64, kind model.FieldKind) (*model.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributions[id]
	if !ok || c.Field != kind {
		return nil, ErrNotFound
	}
	return copyContribution(c), nil
}

func (s *MemoryStore) FindContributions(_ context.Context, f ContributionFilter, page, perPage int) ([]ContributionSummary, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]*model.Contribution, 0)
	for _, c := range s.contributions {
		if f.MovieID != 0 && c.MovieID != f.MovieID {
			continue
		}
		if f.Field != "" && c.Field != f.Field {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if !f.FromDate.IsZero() && c.CreatedAt.Before(f.FromDate) {
			continue
		}
		if !f.ToDate.IsZero() && c.CreatedAt.After(f.ToDate) {
			continue
		}
		matched = append(matched, c)
	}
	// Newest first, matching the MySQL ordering.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPageSize
	}
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]ContributionSummary, 0, end-start)
	for _, c := range matched[start:end] {
		out = append(out, ContributionSummary{ID: c.ID, Field: c.Field, CreatedAt: c.CreatedAt})
	}
	return out, total, nil
}

// BeginTx locks the store and snapshots the mutable state so Rollback can
// restore it.
func (s *MemoryStore) BeginTx(_ context.Context) (Tx, error) {
	s.mu.Lock()
	t := &memTx{store: s}
	t.snapRecords = make(map[uint64]*model.FieldRecord, len(s.records))
	for id, rec := range s.records {
		t.snapRecords[id] = copyRecord(rec)
	}
	t.snapContributions = make(map[uint64]*model.Contribution, len(s.contributions))
	for id, c := range s.contributions {
		t.snapContributions[id] = copyContribution(c)
	}
	t.snapNextRecordID = s.nextRecordID
	t.snapNextContributionID = s.nextContributionID
	return t, nil
}

type memTx struct {
	store *MemoryStore
	done  bool

	snapRecords            map[uint64]*model.FieldRecord
	snapContributions      map[uint64]*model.Contribution
	snapNextRecordID       uint64
	snapNextContributionID uint64
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.records = t.snapRecords
	t.store.contributions = t.snapContributions
	t.store.nextRecordID = t.snapNextRecordID
	t.store.nextContributionID = t.snapNextContributionID
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) LockMovie(_ context.Context, id uint64) (*model.Movie, error) {
	return t.store.acceptedMovieLocked(id)
}

func (t *memTx) LockWaitingContribution(_ context.Context, id uint64) (*model.Contribution, error) {
	c, ok := t.store.contributions[id]
	if !ok || c.Status != model.StatusWaiting {
		return nil, ErrNotFound
	}
	return copyContribution(c), nil
}

func (t *memTx) FieldRecord(_ context.Context, id uint64) (*model.FieldRecord, error) {
	rec, ok := t.store.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (t *memTx) HasActiveDuplicate(_ context.Context, movieID uint64, kind model.FieldKind, key string) (bool, error) {
	for _, rec := range t.store.records {
		if rec.MovieID == movieID && rec.Kind == kind && rec.Active() &&
			rec.Payload.DuplicateKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertFieldRecord(_ context.Context, rec *model.FieldRecord) error {
	rec.ID = t.store.nextRecordID
	t.store.nextRecordID++
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	t.store.records[rec.ID] = copyRecord(rec)
	return nil
}

func (t *memTx) UpdateFieldRecord(_ context.Context, rec *model.FieldRecord) error {
	if _, ok := t.store.records[rec.ID]; !ok {
		return ErrNotFound
	}
	rec.UpdatedAt = time.Now().UTC()
	t.store.records[rec.ID] = copyRecord(rec)
	return nil
}

func (t *memTx) InsertContribution(_ context.Context, c *model.Contribution) error {
	c.ID = t.store.nextContributionID
	t.store.nextContributionID++
	c.CreatedAt = time.Now().UTC()
	t.store.contributions[c.ID] = copyContribution(c)
	return nil
}

func (t *memTx) UpdateContribution(_ context.Context, c *model.Contribution) error {
	if _, ok := t.store.contributions[c.ID]; !ok {
		return ErrNotFound
	}
	t.store.contributions[c.ID] = copyContribution(c)
	return nil
}
