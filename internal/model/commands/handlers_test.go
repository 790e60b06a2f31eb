package commands

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/entity/identity"
	"max.ks1230/expenses-app/internal/model/ledger"
	"max.ks1230/expenses-app/internal/model/session"
)

// fakeBackend stands in for the record service behind both stores.
type fakeBackend struct {
	users   []identity.Record
	entries []entry.Record
	nextID  int
}

func (f *fakeBackend) ListUsers(_ context.Context, username string) ([]identity.Record, error) {
	res := make([]identity.Record, 0)
	for _, u := range f.users {
		if u.Username == username {
			res = append(res, u)
		}
	}
	return res, nil
}

func (f *fakeBackend) CreateUser(_ context.Context, rec identity.Record) (identity.Record, error) {
	rec.ID = f.assignID()
	f.users = append(f.users, rec)
	return rec, nil
}

func (f *fakeBackend) ListEntries(_ context.Context) ([]entry.Record, error) {
	return f.entries, nil
}

func (f *fakeBackend) CreateEntry(_ context.Context, rec entry.Record) (entry.Record, error) {
	rec.ID = f.assignID()
	f.entries = append(f.entries, rec)
	return rec, nil
}

func (f *fakeBackend) UpdateEntry(_ context.Context, rec entry.Record) (entry.Record, error) {
	for i, e := range f.entries {
		if e.ID == rec.ID {
			f.entries[i] = rec
		}
	}
	return rec, nil
}

func (f *fakeBackend) DeleteEntry(_ context.Context, id string) error {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) assignID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

type testConfig struct{}

func (testConfig) PageSize() int {
	return 10
}

func newTestService(backend *fakeBackend) *Service {
	return NewService(session.NewStore(backend), ledger.NewStore(backend), testConfig{})
}

func loggedInService(t *testing.T, backend *fakeBackend) *Service {
	t.Helper()
	backend.users = append(backend.users, identity.Record{ID: "u1", Username: "max", Password: "secret"})
	svc := newTestService(backend)
	resp, err := svc.HandleInput(context.Background(), "/login max secret")
	require.NoError(t, err)
	require.Contains(t, resp, "Welcome back")
	return svc
}

func Test_OnStartCommand_ShouldAnswerWithIntroMessage(t *testing.T) {
	svc := newTestService(&fakeBackend{})

	resp, err := svc.HandleInput(context.Background(), "/start")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, helloMessage))
}

func Test_OnUnknownCommand_ShouldAnswerWithHelpHint(t *testing.T) {
	svc := newTestService(&fakeBackend{})

	resp, err := svc.HandleInput(context.Background(), "/none")

	assert.NoError(t, err)
	assert.Equal(t, dontUnderstandMessage, resp)
}

func Test_OnBalanceWithoutLogin_ShouldAskForLogin(t *testing.T) {
	svc := newTestService(&fakeBackend{})

	resp, err := svc.HandleInput(context.Background(), "/balance")

	assert.NoError(t, err)
	assert.Equal(t, needLoginMessage, resp)
}

func Test_OnLoginWithBadPassword_ShouldAnswerInvalidCredentials(t *testing.T) {
	backend := &fakeBackend{users: []identity.Record{
		{ID: "u1", Username: "max", Password: "secret"},
	}}
	svc := newTestService(backend)

	resp, err := svc.HandleInput(context.Background(), "/login max wrong")

	assert.NoError(t, err)
	assert.Equal(t, invalidCredsMessage, resp)
}

func Test_OnSignupWithTakenUsername_ShouldAnswerUsernameTaken(t *testing.T) {
	backend := &fakeBackend{users: []identity.Record{
		{ID: "u1", Username: "max", Password: "secret"},
	}}
	svc := newTestService(backend)

	resp, err := svc.HandleInput(context.Background(), "/signup max other")

	assert.NoError(t, err)
	assert.Equal(t, usernameTakenMessage, resp)
}

func Test_OnAddAndBalance_ShouldReportSignedTotals(t *testing.T) {
	svc := loggedInService(t, &fakeBackend{})
	ctx := context.Background()

	_, err := svc.HandleInput(ctx, "/add income income 100 Salary")
	require.NoError(t, err)
	_, err = svc.HandleInput(ctx, "/add expense fuel 40 Gas station")
	require.NoError(t, err)

	resp, err := svc.HandleInput(ctx, "/balance")

	assert.NoError(t, err)
	assert.Contains(t, resp, "Balance: 60.00")
	assert.Contains(t, resp, "Income: 100.00")
	assert.Contains(t, resp, "Expenses: 40.00")
}

func Test_OnAddWithNegativeAmount_ShouldAnswerValidationMessage(t *testing.T) {
	svc := loggedInService(t, &fakeBackend{})

	resp, err := svc.HandleInput(context.Background(), "/add expense food -5 Coffee")

	assert.NoError(t, err)
	assert.Contains(t, resp, "amount")
	assert.Contains(t, resp, "positive")
}

func Test_OnFind_ShouldMatchCaseInsensitive(t *testing.T) {
	svc := loggedInService(t, &fakeBackend{})
	ctx := context.Background()

	_, err := svc.HandleInput(ctx, "/add expense food 5 Coffee Shop")
	require.NoError(t, err)
	_, err = svc.HandleInput(ctx, "/add expense shopping 20 Groceries")
	require.NoError(t, err)

	resp, err := svc.HandleInput(ctx, "/find cof")

	assert.NoError(t, err)
	assert.Contains(t, resp, "Coffee Shop")
	assert.NotContains(t, resp, "Groceries")
}

func Test_OnDelete_ShouldRemoveEntry(t *testing.T) {
	svc := loggedInService(t, &fakeBackend{})
	ctx := context.Background()

	resp, err := svc.HandleInput(ctx, "/add expense food 5 Coffee")
	require.NoError(t, err)
	id := strings.TrimPrefix(resp, "Saved as ")

	resp, err = svc.HandleInput(ctx, "/delete "+id)
	require.NoError(t, err)
	assert.Equal(t, "Deleted "+id, resp)

	resp, err = svc.HandleInput(ctx, "/list")
	assert.NoError(t, err)
	assert.Equal(t, noEntriesMessage, resp)
}

func Test_OnReport_ShouldGroupByCategory(t *testing.T) {
	svc := loggedInService(t, &fakeBackend{})
	ctx := context.Background()

	_, err := svc.HandleInput(ctx, "/add expense food 12.50 Lunch")
	require.NoError(t, err)
	_, err = svc.HandleInput(ctx, "/add expense food 7.50 Snacks")
	require.NoError(t, err)
	_, err = svc.HandleInput(ctx, "/add income income 100 Salary")
	require.NoError(t, err)

	resp, err := svc.HandleInput(ctx, "/report")

	assert.NoError(t, err)
	assert.Contains(t, resp, "food: -20.00")
	assert.Contains(t, resp, "income: 100.00")
	assert.Contains(t, resp, "Balance: 80.00")
}
