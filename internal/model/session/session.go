// Package session holds the current authenticated identity and drives
// the login, signup and logout flows against the record service.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/expenses-app/internal/entity/identity"
	"max.ks1230/expenses-app/internal/logger"
	"max.ks1230/expenses-app/internal/model/customerr"
)

type recordsClient interface {
	ListUsers(ctx context.Context, username string) ([]identity.Record, error)
	CreateUser(ctx context.Context, rec identity.Record) (identity.Record, error)
}

type persister interface {
	Schedule()
}

// Store has exactly two durable states, anonymous and authenticated.
// The loading flag is transient and never persisted.
type Store struct {
	mu            sync.Mutex
	user          identity.Record
	authenticated bool
	loading       bool

	records recordsClient
	persist persister
}

func NewStore(records recordsClient) *Store {
	return &Store{records: records}
}

// SetPersister wires the snapshot writer. Wiring happens after
// construction because the writer's source is the store itself.
func (s *Store) SetPersister(p persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = p
}

// Login looks the username up remotely and compares passwords with
// plain equality, which is the backing mock service's contract.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	candidates, err := s.records.ListUsers(ctx, username)
	if err != nil {
		return errors.Wrap(err, "login")
	}

	for _, c := range candidates {
		if c.Username != username {
			continue
		}
		if c.Password != password {
			break
		}
		s.mu.Lock()
		s.user = c
		s.authenticated = true
		s.mu.Unlock()
		s.schedulePersist()
		logger.Info("logged in", zap.String("username", username))
		return nil
	}
	return &customerr.AuthError{Err: "invalid username or password"}
}

// Signup creates the identity remotely, then logs in with the same
// credentials. An existing username fails before any write.
func (s *Store) Signup(ctx context.Context, username, password, displayName string) error {
	s.setLoading(true)

	existing, err := s.records.ListUsers(ctx, username)
	if err != nil {
		s.setLoading(false)
		return errors.Wrap(err, "signup")
	}
	for _, c := range existing {
		if c.Username == username {
			s.setLoading(false)
			return &customerr.DuplicateError{Username: username}
		}
	}

	_, err = s.records.CreateUser(ctx, identity.Record{
		Username:  username,
		Name:      displayName,
		Password:  password,
		CreatedAt: time.Now(),
	})
	s.setLoading(false)
	if err != nil {
		return &customerr.CreationError{Err: err}
	}

	return s.Login(ctx, username, password)
}

// Logout clears the session unconditionally. No remote call.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = identity.Record{}
	s.authenticated = false
	s.mu.Unlock()
	s.schedulePersist()
	logger.Info("logged out")
}

func (s *Store) User() (identity.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.authenticated
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

type snapshotState struct {
	User          snapshotUser `json:"user"`
	Authenticated bool         `json:"isAuthenticated"`
}

type snapshotUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt"`
}

// Snapshot serializes the durable part of the session for the cache.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(snapshotState{
		User: snapshotUser{
			ID:        s.user.ID,
			Username:  s.user.Username,
			Name:      s.user.Name,
			Password:  s.user.Password,
			CreatedAt: s.user.CreatedAt.Format(time.RFC3339),
		},
		Authenticated: s.authenticated,
	})
}

// Restore rehydrates the last persisted session. A stale authenticated
// flag survives restarts without revalidation, matching the cached
// behavior of the source application.
func (s *Store) Restore(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var state snapshotState
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrap(err, "restore session")
	}

	created, _ := time.Parse(time.RFC3339, state.User.CreatedAt)
	s.mu.Lock()
	s.user = identity.Record{
		ID:        state.User.ID,
		Username:  state.User.Username,
		Name:      state.User.Name,
		Password:  state.User.Password,
		CreatedAt: created,
	}
	s.authenticated = state.Authenticated
	s.mu.Unlock()
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) schedulePersist() {
	s.mu.Lock()
	p := s.persist
	s.mu.Unlock()
	if p != nil {
		p.Schedule()
	}
}
