package ledger

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/model/customerr"
)

type fakeRecords struct {
	listEntries func(ctx context.Context) ([]entry.Record, error)
	createEntry func(ctx context.Context, rec entry.Record) (entry.Record, error)
	updateEntry func(ctx context.Context, rec entry.Record) (entry.Record, error)
	deleteEntry func(ctx context.Context, id string) error

	createCalls int
	deleteCalls int
}

func (f *fakeRecords) ListEntries(ctx context.Context) ([]entry.Record, error) {
	return f.listEntries(ctx)
}

func (f *fakeRecords) CreateEntry(ctx context.Context, rec entry.Record) (entry.Record, error) {
	f.createCalls++
	return f.createEntry(ctx, rec)
}

func (f *fakeRecords) UpdateEntry(ctx context.Context, rec entry.Record) (entry.Record, error) {
	return f.updateEntry(ctx, rec)
}

func (f *fakeRecords) DeleteEntry(ctx context.Context, id string) error {
	f.deleteCalls++
	return f.deleteEntry(ctx, id)
}

func assigningRecords() *fakeRecords {
	next := 0
	return &fakeRecords{
		createEntry: func(_ context.Context, rec entry.Record) (entry.Record, error) {
			next++
			rec.ID = strconv.Itoa(next)
			return rec, nil
		},
		deleteEntry: func(_ context.Context, _ string) error {
			return nil
		},
	}
}

func draft(t entry.Type, amount float64, title string) entry.Draft {
	return entry.Draft{
		Title:    title,
		Amount:   amount,
		Type:     t,
		Category: entry.Food,
	}
}

func Test_OnAddThenDelete_ShouldReturnToPreviousContents(t *testing.T) {
	ctx := context.Background()
	store := NewStore(assigningRecords())

	_, err := store.Add(ctx, draft(entry.TypeExpense, 10, "Groceries"), "max")
	require.NoError(t, err)
	want := store.Entries()

	added, err := store.Add(ctx, draft(entry.TypeExpense, 5, "Coffee"), "max")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, added.ID))
	assert.Equal(t, want, store.Entries())
}

func Test_OnAggregates_ShouldMatchSignedSums(t *testing.T) {
	ctx := context.Background()
	store := NewStore(assigningRecords())

	_, err := store.Add(ctx, draft(entry.TypeIncome, 100, "Salary"), "max")
	require.NoError(t, err)
	_, err = store.Add(ctx, draft(entry.TypeExpense, 40, "Fuel"), "max")
	require.NoError(t, err)

	assert.Equal(t, 60.0, store.TotalBalance())
	assert.Equal(t, 100.0, store.TotalIncome())
	assert.Equal(t, 40.0, store.TotalExpenses())
	assert.Equal(t, store.TotalIncome()-store.TotalExpenses(), store.TotalBalance())
}

func Test_OnCategorySums_ShouldAddUpToTypeTotals(t *testing.T) {
	ctx := context.Background()
	store := NewStore(assigningRecords())

	add := func(typ entry.Type, cat entry.Category, amount float64) {
		d := draft(typ, amount, "Entry")
		d.Category = cat
		_, err := store.Add(ctx, d, "max")
		require.NoError(t, err)
	}
	add(entry.TypeExpense, entry.Food, 12.5)
	add(entry.TypeExpense, entry.Fuel, 30)
	add(entry.TypeExpense, entry.Food, 7.5)
	add(entry.TypeIncome, entry.Income, 100)

	byCategory := 0.0
	for _, cat := range entry.Categories {
		for _, e := range store.ByCategory(cat) {
			if e.Type == entry.TypeExpense {
				byCategory += e.Amount
			}
		}
	}
	assert.Equal(t, store.TotalExpenses(), byCategory)
}

func Test_OnNonPositiveAmount_ShouldRejectBeforeAnyNetworkCall(t *testing.T) {
	ctx := context.Background()
	records := assigningRecords()
	store := NewStore(records)

	_, err := store.Add(ctx, draft(entry.TypeExpense, -5, "Coffee"), "max")

	var valErr *customerr.ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, "amount", valErr.Field)
	assert.Equal(t, 0, records.createCalls)
}

func Test_OnNumericTitle_ShouldRejectBeforeAnyNetworkCall(t *testing.T) {
	ctx := context.Background()
	records := assigningRecords()
	store := NewStore(records)

	_, err := store.Add(ctx, draft(entry.TypeExpense, 5, "12345"), "max")

	var valErr *customerr.ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, "title", valErr.Field)
	assert.Equal(t, 0, records.createCalls)
}

func Test_OnFetchFailure_ShouldKeepPreviousCollection(t *testing.T) {
	ctx := context.Background()
	records := assigningRecords()
	store := NewStore(records)

	_, err := store.Add(ctx, draft(entry.TypeExpense, 5, "Coffee"), "max")
	require.NoError(t, err)
	want := store.Entries()

	records.listEntries = func(_ context.Context) ([]entry.Record, error) {
		return nil, assert.AnError
	}

	err = store.FetchAll(ctx)
	var fetchErr *customerr.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, want, store.Entries())
}

func Test_OnFetchRacingLocalDelete_ShouldDiscardStaleResponse(t *testing.T) {
	ctx := context.Background()
	records := assigningRecords()
	store := NewStore(records)

	added, err := store.Add(ctx, draft(entry.TypeExpense, 5, "Coffee"), "max")
	require.NoError(t, err)

	// the list response still contains the entry deleted while the
	// fetch was in flight
	records.listEntries = func(_ context.Context) ([]entry.Record, error) {
		require.NoError(t, store.Delete(ctx, added.ID))
		return []entry.Record{added}, nil
	}

	require.NoError(t, store.FetchAll(ctx))
	assert.Empty(t, store.Entries())
}

func Test_OnFetchSuccess_ShouldReplaceCollection(t *testing.T) {
	ctx := context.Background()
	records := assigningRecords()
	store := NewStore(records)

	remote := []entry.Record{
		{ID: "7", Title: "Rent", Amount: 900, Type: entry.TypeExpense, Category: entry.Bills},
	}
	records.listEntries = func(_ context.Context) ([]entry.Record, error) {
		return remote, nil
	}

	require.NoError(t, store.FetchAll(ctx))
	assert.Equal(t, remote, store.Entries())
}

func Test_OnDeleteOfUnknownLocalID_ShouldBeNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewStore(assigningRecords())

	_, err := store.Add(ctx, draft(entry.TypeExpense, 5, "Coffee"), "max")
	require.NoError(t, err)
	want := store.Entries()

	require.NoError(t, store.Delete(ctx, "no-such-id"))
	assert.Equal(t, want, store.Entries())
}

func Test_OnSorted_ShouldOrderNewestFirstKeepingTies(t *testing.T) {
	records := assigningRecords()
	store := NewStore(records)

	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records.listEntries = func(_ context.Context) ([]entry.Record, error) {
		return []entry.Record{
			{ID: "1", Title: "Old", CreatedAt: day.Add(-time.Hour), Type: entry.TypeExpense},
			{ID: "2", Title: "TieA", CreatedAt: day, Type: entry.TypeExpense},
			{ID: "3", Title: "TieB", CreatedAt: day, Type: entry.TypeExpense},
		}, nil
	}
	require.NoError(t, store.FetchAll(context.Background()))

	sorted := store.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "2", sorted[0].ID)
	assert.Equal(t, "3", sorted[1].ID)
	assert.Equal(t, "1", sorted[2].ID)
}

func Test_OnSnapshotRestore_ShouldRoundTripCollection(t *testing.T) {
	ctx := context.Background()
	records := assigningRecords()
	store := NewStore(records)

	_, err := store.Add(ctx, draft(entry.TypeIncome, 100, "Salary"), "max")
	require.NoError(t, err)
	_, err = store.Add(ctx, draft(entry.TypeExpense, 40, "Fuel"), "max")
	require.NoError(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)

	restored := NewStore(records)
	require.NoError(t, restored.Restore(snap))

	assert.Equal(t, store.TotalBalance(), restored.TotalBalance())
	assert.Len(t, restored.Entries(), 2)
	assert.Equal(t, store.Entries()[0].Title, restored.Entries()[0].Title)
}

func Test_OnUpdate_ShouldReplaceRecordInPlace(t *testing.T) {
	ctx := context.Background()
	records := assigningRecords()
	records.updateEntry = func(_ context.Context, rec entry.Record) (entry.Record, error) {
		return rec, nil
	}
	store := NewStore(records)

	added, err := store.Add(ctx, draft(entry.TypeExpense, 5, "Coffee"), "max")
	require.NoError(t, err)

	updated, err := store.Update(ctx, added.ID, draft(entry.TypeExpense, 6.5, "Coffee Shop"))
	require.NoError(t, err)

	assert.Equal(t, added.ID, updated.ID)
	got, ok := store.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Coffee Shop", got.Title)
	assert.Equal(t, 6.5, got.Amount)
	assert.Len(t, store.Entries(), 1)
}
