package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/repositories/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	accAlice  = "40817810000000000001"
	accAlice2 = "40817810000000000002"
	accBob    = "40817810000000000003"
	accGone   = "40817810000000000099"

	cardAlice  = "4000000000000001"
	cardAlice2 = "4000000000000002"
	cardBob    = "4000000000000003"
)

type fixture struct {
	store *memory.Store
	alice uint
	bob   uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	alice := &models.Customer{FirstName: "Alice", FIN: "AAA0001", Email: "alice@bank.test", Phone: "+100001", RiskStatus: models.RiskRegular}
	bob := &models.Customer{FirstName: "Bob", FIN: "BBB0002", Email: "bob@bank.test", Phone: "+100002", RiskStatus: models.RiskRegular}
	require.NoError(t, store.Customers().Create(ctx, alice))
	require.NoError(t, store.Customers().Create(ctx, bob))

	f := &fixture{store: store, alice: alice.ID, bob: bob.ID}
	f.addAccount(t, accAlice, alice.ID, "500.00", models.StatusActive)
	f.addAccount(t, accAlice2, alice.ID, "0", models.StatusActive)
	f.addAccount(t, accBob, bob.ID, "20.00", models.StatusActive)
	f.addCard(t, cardAlice, accAlice, models.StatusActive)
	f.addCard(t, cardBob, accBob, models.StatusActive)
	return f
}

func (f *fixture) addAccount(t *testing.T, number string, customer uint, balance string, status models.ContainerStatus) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.store.Accounts().Create(context.Background(), &models.Account{
		Number:     number,
		CustomerID: customer,
		Balance:    decimal.RequireFromString(balance),
		Status:     status,
		OpenedAt:   now,
		ExpiresAt:  now.AddDate(models.AccountLifetimeYears, 0, 0),
	}))
}

func (f *fixture) addCard(t *testing.T, number, account string, status models.ContainerStatus) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.store.Cards().Create(context.Background(), &models.Card{
		Number:        number,
		AccountNumber: account,
		Status:        status,
		IssuedAt:      now,
		ExpiresAt:     now.AddDate(models.CardLifetimeYears, 0, 0),
	}))
}

func (f *fixture) setStatus(t *testing.T, number string, status models.ContainerStatus) {
	t.Helper()
	ctx := context.Background()
	acc, err := f.store.Accounts().GetByNumber(ctx, number)
	require.NoError(t, err)
	acc.Status = status
	require.NoError(t, f.store.Accounts().Update(ctx, acc))
}

func (f *fixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	acc, err := f.store.Accounts().GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return acc.Balance
}

func (f *fixture) ledgerCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.store.Ledger().FindAll(context.Background(), models.LedgerFilter{}, 1, 0)
	require.NoError(t, err)
	return total
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// MockStore fails the test on any call it was not told to expect.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Accounts() repositories.AccountRepository {
	return m.Called().Get(0).(repositories.AccountRepository)
}

func (m *MockStore) Cards() repositories.CardRepository {
	return m.Called().Get(0).(repositories.CardRepository)
}

func (m *MockStore) Customers() repositories.CustomerRepository {
	return m.Called().Get(0).(repositories.CustomerRepository)
}

func (m *MockStore) Ledger() repositories.LedgerRepository {
	return m.Called().Get(0).(repositories.LedgerRepository)
}

func (m *MockStore) Users() repositories.UserRepository {
	return m.Called().Get(0).(repositories.UserRepository)
}

func (m *MockStore) LockAccounts(ctx context.Context, numbers ...string) (map[string]*models.Account, error) {
	args := m.Called(ctx, numbers)
	return args.Get(0).(map[string]*models.Account), args.Error(1)
}

func (m *MockStore) LockLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockStore) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

type recordingMetrics struct {
	NoopMetricsCollector
	results []string
	volume  decimal.Decimal
}

func (r *recordingMetrics) RecordOperationResult(_, result string) {
	r.results = append(r.results, result)
}

func (r *recordingMetrics) RecordTransferVolume(amount decimal.Decimal) {
	r.volume = r.volume.Add(amount)
}

// failingAccounts fails the Update call numbered failOn (1-based) and passes
// every other call through.
type failingAccounts struct {
	repositories.AccountRepository
	calls  *int
	failOn int
}

func (a failingAccounts) Update(ctx context.Context, account *models.Account) error {
	*a.calls++
	if *a.calls == a.failOn {
		return errors.New("disk full")
	}
	return a.AccountRepository.Update(ctx, account)
}

// failingStore wraps a Store so that account updates made inside its
// transactions go through failingAccounts.
type failingStore struct {
	repositories.Store
	calls  *int
	failOn int
}

func (s failingStore) Accounts() repositories.AccountRepository {
	return failingAccounts{AccountRepository: s.Store.Accounts(), calls: s.calls, failOn: s.failOn}
}

func (s failingStore) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	return s.Store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		return fn(failingStore{Store: tx, calls: s.calls, failOn: s.failOn})
	})
}
