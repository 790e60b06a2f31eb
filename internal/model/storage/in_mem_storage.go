package storage

import (
	"context"
	"strconv"
	"sync"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/entity/identity"
)

// InMemStorage assigns incrementing string ids, the way the hosted mock
// service does.
type InMemStorage struct {
	mu      sync.Mutex
	users   []identity.Record
	entries []entry.Record
	nextID  int64
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{nextID: 1}
}

func (s *InMemStorage) ListUsers(_ context.Context, username string) ([]identity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]identity.Record, 0)
	for _, u := range s.users {
		if username == "" || u.Username == username {
			res = append(res, u)
		}
	}
	return res, nil
}

func (s *InMemStorage) CreateUser(_ context.Context, rec identity.Record) (identity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.assignID()
	s.users = append(s.users, rec)
	return rec, nil
}

func (s *InMemStorage) ListEntries(_ context.Context) ([]entry.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]entry.Record, len(s.entries))
	copy(res, s.entries)
	return res, nil
}

func (s *InMemStorage) CreateEntry(_ context.Context, rec entry.Record) (entry.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.assignID()
	s.entries = append(s.entries, rec)
	return rec, nil
}

func (s *InMemStorage) UpdateEntry(_ context.Context, rec entry.Record) (entry.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == rec.ID {
			s.entries[i] = rec
			return rec, nil
		}
	}
	return entry.Record{}, ErrNotFound
}

func (s *InMemStorage) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemStorage) assignID() string {
	id := strconv.FormatInt(s.nextID, 10)
	s.nextID++
	return id
}
