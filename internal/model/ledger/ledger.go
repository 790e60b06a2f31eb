// Package ledger maintains the working collection of entries and
// answers derived aggregate queries over it.
package ledger

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/model/customerr"
)

var purelyNumeric = regexp.MustCompile(`^\d+$`)

type recordsClient interface {
	ListEntries(ctx context.Context) ([]entry.Record, error)
	CreateEntry(ctx context.Context, rec entry.Record) (entry.Record, error)
	UpdateEntry(ctx context.Context, rec entry.Record) (entry.Record, error)
	DeleteEntry(ctx context.Context, id string) error
}

type persister interface {
	Schedule()
}

// Store is the single owner of the in-memory entry collection. Every
// remote mutation bumps seq; FetchAll uses it to fence out list
// responses captured before a local mutation landed.
type Store struct {
	mu      sync.Mutex
	entries []entry.Record
	loading bool
	seq     uint64

	records recordsClient
	persist persister
}

func NewStore(records recordsClient) *Store {
	return &Store{records: records}
}

func (s *Store) SetPersister(p persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = p
}

// FetchAll replaces the collection with the remote list. On failure the
// previous collection is left untouched. A response that lost the race
// against a local mutation is discarded; the caller already holds
// fresher state.
func (s *Store) FetchAll(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observeOp(opFetch, start, err != nil) }()

	s.setLoading(true)
	defer s.setLoading(false)

	s.mu.Lock()
	fetchSeq := s.seq
	s.mu.Unlock()

	remote, err := s.records.ListEntries(ctx)
	if err != nil {
		return &customerr.FetchError{Err: err}
	}

	s.mu.Lock()
	if s.seq != fetchSeq {
		s.mu.Unlock()
		return nil
	}
	s.entries = remote
	s.mu.Unlock()
	s.schedulePersist()
	return nil
}

// Add validates the draft, submits it, and prepends the server-assigned
// record. Validation failures never reach the network.
func (s *Store) Add(ctx context.Context, draft entry.Draft, username string) (rec entry.Record, err error) {
	start := time.Now()
	defer func() { observeOp(opAdd, start, err != nil) }()

	if err = validateDraft(draft); err != nil {
		return entry.Record{}, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	created, err := s.records.CreateEntry(ctx, entry.Record{
		Title:     strings.TrimSpace(draft.Title),
		Amount:    draft.Amount,
		Type:      draft.Type,
		Category:  draft.Category,
		Notes:     strings.TrimSpace(draft.Notes),
		Username:  username,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return entry.Record{}, &customerr.WriteError{Err: err}
	}

	s.mu.Lock()
	s.entries = append([]entry.Record{created}, s.entries...)
	s.seq++
	s.mu.Unlock()
	s.schedulePersist()
	return created, nil
}

// Delete removes the entry remotely, then locally by id. A missing
// local id after a successful remote delete is a no-op.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observeOp(opDelete, start, err != nil) }()

	s.setLoading(true)
	defer s.setLoading(false)

	if err = s.records.DeleteEntry(ctx, id); err != nil {
		return &customerr.DeleteError{ID: id, Err: err}
	}

	s.mu.Lock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.seq++
	s.mu.Unlock()
	s.schedulePersist()
	return nil
}

// Update replaces an entry's editable fields via a full-body PUT.
func (s *Store) Update(ctx context.Context, id string, draft entry.Draft) (rec entry.Record, err error) {
	start := time.Now()
	defer func() { observeOp(opUpdate, start, err != nil) }()

	if err = validateDraft(draft); err != nil {
		return entry.Record{}, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	current, ok := s.Get(id)
	if !ok {
		current = entry.Record{ID: id, CreatedAt: time.Now()}
	}
	current.Title = strings.TrimSpace(draft.Title)
	current.Amount = draft.Amount
	current.Type = draft.Type
	current.Category = draft.Category
	current.Notes = strings.TrimSpace(draft.Notes)

	updated, err := s.records.UpdateEntry(ctx, current)
	if err != nil {
		return entry.Record{}, &customerr.WriteError{Err: err}
	}

	s.mu.Lock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries[i] = updated
			break
		}
	}
	s.seq++
	s.mu.Unlock()
	s.schedulePersist()
	return updated, nil
}

func (s *Store) Get(id string) (entry.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return entry.Record{}, false
}

// Entries returns a copy in collection order.
func (s *Store) Entries() []entry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]entry.Record, len(s.entries))
	copy(res, s.entries)
	return res
}

// Sorted returns a copy ordered newest first, ties keeping collection
// order.
func (s *Store) Sorted() []entry.Record {
	res := s.Entries()
	entry.SortNewestFirst(res)
	return res
}

// TotalBalance folds signed amounts over the whole collection. It is
// recomputed from scratch on every call.
func (s *Store) TotalBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, e := range s.entries {
		total += e.Signed()
	}
	return total
}

func (s *Store) TotalIncome() float64 {
	return s.totalOfType(entry.TypeIncome)
}

func (s *Store) TotalExpenses() float64 {
	return s.totalOfType(entry.TypeExpense)
}

func (s *Store) totalOfType(t entry.Type) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, e := range s.entries {
		if e.Type == t {
			total += e.Amount
		}
	}
	return total
}

// ByCategory filters in collection order.
func (s *Store) ByCategory(cat entry.Category) []entry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]entry.Record, 0)
	for _, e := range s.entries {
		if e.Category == cat {
			res = append(res, e)
		}
	}
	return res
}

// ByType filters in collection order.
func (s *Store) ByType(t entry.Type) []entry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]entry.Record, 0)
	for _, e := range s.entries {
		if e.Type == t {
			res = append(res, e)
		}
	}
	return res
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func validateDraft(d entry.Draft) error {
	title := strings.TrimSpace(d.Title)
	if title == "" || purelyNumeric.MatchString(title) {
		return &customerr.ValidationError{
			Field: "title",
			Err:   "must be a non-empty string and not just numbers",
		}
	}
	if d.Amount <= 0 || math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) {
		return &customerr.ValidationError{
			Field: "amount",
			Err:   "must be a positive number",
		}
	}
	if d.Type != entry.TypeIncome && d.Type != entry.TypeExpense {
		return &customerr.ValidationError{
			Field: "type",
			Err:   "must be income or expense",
		}
	}
	return nil
}

type snapshotEntry struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	Category  string  `json:"category"`
	Notes     string  `json:"notes,omitempty"`
	Username  string  `json:"username,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// Snapshot serializes the collection for the cache.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := make([]snapshotEntry, 0, len(s.entries))
	for _, e := range s.entries {
		state = append(state, snapshotEntry{
			ID:        e.ID,
			Title:     e.Title,
			Amount:    e.Amount,
			Type:      string(e.Type),
			Category:  string(e.Category),
			Notes:     e.Notes,
			Username:  e.Username,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return json.Marshal(state)
}

// Restore rehydrates the collection from the last persisted snapshot.
// Called once at startup, before the first fetch completes.
func (s *Store) Restore(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var state []snapshotEntry
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrap(err, "restore ledger")
	}

	entries := make([]entry.Record, 0, len(state))
	for _, e := range state {
		created, _ := time.Parse(time.RFC3339, e.CreatedAt)
		entries = append(entries, entry.Record{
			ID:        e.ID,
			Title:     e.Title,
			Amount:    e.Amount,
			Type:      entry.Type(e.Type),
			Category:  entry.NormalizeCategory(e.Category),
			Notes:     e.Notes,
			Username:  e.Username,
			CreatedAt: created,
		})
	}

	s.mu.Lock()
	s.entries = entries
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
