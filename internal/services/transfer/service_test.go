package transfer

import (
	"context"
	"sync"
	"testing"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/services/ledger"
	"bankcore/internal/services/risk"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(f *fixture, cfg Config, metrics MetricsCollector) Service {
	if cfg.Limits.MonthlyTransferLimit.IsZero() {
		cfg.Limits = models.DefaultLimitPolicy()
	}
	return NewService(f.store, ledger.NewWriter(), risk.NewService(f.store, cfg.Limits, nil), cfg, nil, metrics)
}

func TestTransfer_MovesFundsAndRecordsCompletedEntry(t *testing.T) {
	f := newFixture(t)
	metrics := &recordingMetrics{}
	svc := newTestService(f, Config{}, metrics)

	view, err := svc.Transfer(context.Background(), accAlice, accBob, dec("100.50"))
	require.NoError(t, err)

	assert.Equal(t, "399.5", f.balance(t, accAlice).String())
	assert.Equal(t, "120.5", f.balance(t, accBob).String())

	assert.Regexp(t, `^TR\d{18}$`, view.TransactionID)
	assert.Equal(t, models.EntryCompleted, view.Status)
	assert.Equal(t, f.alice, view.CustomerID)
	assert.Equal(t, accAlice, view.Debit)
	assert.Equal(t, accBob, view.Credit)
	assert.True(t, view.Amount.Equal(dec("100.50")))

	stored, err := f.store.Ledger().GetByID(context.Background(), view.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.KindTransfer, stored.Kind)
	assert.NotNil(t, stored.SettledAt)

	assert.Equal(t, []string{string(models.EntryCompleted)}, metrics.results)
	assert.True(t, metrics.volume.Equal(dec("100.50")))
}

func TestTransfer_RejectionsLeaveNoTrace(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, f *fixture)
		amount   string
		wantErr  *apperrors.DomainError
		wantKind apperrors.Kind
	}{
		{
			name: "zero amount", amount: "0",
			wantErr: apperrors.ErrInvalidAmount, wantKind: apperrors.KindValidation,
		},
		{
			name:   "expired source",
			setup:  func(t *testing.T, f *fixture) { f.setStatus(t, accAlice, models.StatusExpired) },
			amount: "10",
			wantErr: apperrors.ErrContainerNotActive, wantKind: apperrors.KindState,
		},
		{
			name: "insufficient funds", amount: "1000.00",
			wantErr: apperrors.ErrInsufficientFunds, wantKind: apperrors.KindInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			metrics := &recordingMetrics{}
			svc := newTestService(f, Config{}, metrics)

			view, err := svc.Transfer(context.Background(), accAlice, accBob, dec(tt.amount))

			assert.Nil(t, view)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
			assert.Equal(t, "500", f.balance(t, accAlice).String())
			assert.Equal(t, "20", f.balance(t, accBob).String())
			assert.Zero(t, f.ledgerCount(t))
			assert.Equal(t, []string{string(tt.wantKind)}, metrics.results)
		})
	}
}

func TestTransfer_CardsMoveTheirAccountBalances(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f, Config{}, nil)

	view, err := svc.Transfer(context.Background(), cardAlice, cardBob, dec("50"))
	require.NoError(t, err)

	assert.Equal(t, cardAlice, view.Debit)
	assert.Equal(t, cardBob, view.Credit)
	assert.Equal(t, "450", f.balance(t, accAlice).String())
	assert.Equal(t, "70", f.balance(t, accBob).String())
}

func TestTransfer_FailedCreditRollsBackDebit(t *testing.T) {
	f := newFixture(t)
	calls := 0
	store := failingStore{Store: f.store, calls: &calls, failOn: 2}
	limits := models.DefaultLimitPolicy()
	svc := NewService(store, ledger.NewWriter(), risk.NewService(f.store, limits, nil), Config{Limits: limits}, nil, nil)

	view, err := svc.Transfer(context.Background(), accAlice, accBob, dec("100"))

	assert.Nil(t, view)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, 2, calls, "debit written, credit refused")
	assert.Equal(t, "500", f.balance(t, accAlice).String())
	assert.Equal(t, "20", f.balance(t, accBob).String())
	assert.Zero(t, f.ledgerCount(t))
}

func TestTransfer_CardsOnOneAccountWithSelfTransferAllowed(t *testing.T) {
	f := newFixture(t)
	f.addCard(t, cardAlice2, accAlice, models.StatusActive)
	svc := newTestService(f, Config{AllowSelfTransfer: true}, nil)

	view, err := svc.Transfer(context.Background(), cardAlice, cardAlice2, dec("50"))
	require.NoError(t, err)

	assert.Equal(t, models.EntryCompleted, view.Status)
	assert.Equal(t, "500", f.balance(t, accAlice).String(), "the shared balance is unchanged")
	assert.EqualValues(t, 1, f.ledgerCount(t))

	_, err = svc.Transfer(context.Background(), accAlice, accAlice, dec("1"))
	assert.ErrorIs(t, err, apperrors.ErrSameContainer)
}

func TestPrecheck_NeedsNoStore(t *testing.T) {
	store := &MockStore{}
	svc := NewService(store, ledger.NewWriter(), nil, Config{Limits: models.DefaultLimitPolicy()}, nil, nil)

	assert.ErrorIs(t, svc.Precheck(accGone, accBob, dec("0")), apperrors.ErrInvalidAmount)
	assert.ErrorIs(t, svc.Precheck("123", accBob, dec("1")), apperrors.ErrInvalidIdentifier)
	assert.ErrorIs(t, svc.Precheck(accAlice, cardBob, dec("1")), apperrors.ErrMixedContainerKinds)
	assert.NoError(t, svc.Precheck(accGone, accBob, dec("1")))
	store.AssertExpectations(t)
}

func TestTransfer_ContainerModeRestrictsKinds(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f, Config{ContainerMode: models.ContainerModeAccount}, nil)

	_, err := svc.Transfer(context.Background(), cardAlice, cardBob, dec("1"))
	assert.ErrorIs(t, err, apperrors.ErrContainerKindNotAllowed)

	_, err = svc.Transfer(context.Background(), accAlice, accBob, dec("1"))
	assert.NoError(t, err)
}

func TestTransfer_DeferredRecordsPendingWithoutMutation(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f, Config{Mode: ModeDeferred}, nil)

	view, err := svc.Transfer(context.Background(), accAlice, accBob, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, models.EntryPending, view.Status)

	assert.Equal(t, "500", f.balance(t, accAlice).String())
	assert.Equal(t, "20", f.balance(t, accBob).String())

	stored, err := f.store.Ledger().GetByID(context.Background(), view.TransactionID)
	require.NoError(t, err)
	assert.Nil(t, stored.SettledAt)
}

func TestTransfer_CancelledContextIsTimeout(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f, Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Transfer(ctx, accAlice, accBob, dec("1"))
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, "500", f.balance(t, accAlice).String())
}

func TestTransfer_FlagsOwnerOverMonthlyLimit(t *testing.T) {
	f := newFixture(t)
	limits := models.DefaultLimitPolicy()
	limits.MonthlyTransferLimit = dec("150")
	svc := newTestService(f, Config{Limits: limits}, nil)

	_, err := svc.Transfer(context.Background(), accAlice, accBob, dec("100"))
	require.NoError(t, err)
	c, err := f.store.Customers().GetByID(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.RiskRegular, c.RiskStatus)

	_, err = svc.Transfer(context.Background(), accAlice, accBob, dec("100"))
	require.NoError(t, err, "the flag does not block by default")
	c, err = f.store.Customers().GetByID(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.RiskSuspected, c.RiskStatus)
}

func TestTransfer_ConcurrentOppositeDirectionsConserveMoney(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f, Config{}, nil)
	before := f.balance(t, accAlice).Add(f.balance(t, accBob))

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Transfer(context.Background(), accAlice, accBob, dec("30"))
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Transfer(context.Background(), accBob, accAlice, dec("25"))
		}()
	}
	wg.Wait()

	alice, bob := f.balance(t, accAlice), f.balance(t, accBob)
	assert.False(t, alice.IsNegative())
	assert.False(t, bob.IsNegative())
	assert.True(t, before.Equal(alice.Add(bob)), "total %s became %s", before, alice.Add(bob))

	// Every COMPLETED entry accounts for exactly one applied movement.
	entries, total, err := f.store.Ledger().FindAll(context.Background(), models.LedgerFilter{}, MaxPageSize, 0)
	require.NoError(t, err)
	net := decimal.Zero
	for _, e := range entries {
		if e.Source == accAlice {
			net = net.Sub(e.Amount)
		} else {
			net = net.Add(e.Amount)
		}
	}
	assert.LessOrEqual(t, total, int64(80))
	assert.True(t, dec("500").Add(net).Equal(alice), "ledger replay %s, balance %s", dec("500").Add(net), alice)
}

func TestListTransactions_PagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f, Config{}, nil)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.Transfer(ctx, accAlice, accBob, decimal.NewFromInt(int64(i)))
		require.NoError(t, err)
	}
	_, err := svc.Transfer(ctx, accBob, accAlice, dec("5"))
	require.NoError(t, err)

	all, err := svc.ListTransactions(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Equal(t, DefaultPageSize, all.Size)
	assert.Len(t, all.Items, 4)

	alice := f.alice
	page, err := svc.ListTransactions(ctx, &alice, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Amount.Equal(dec("1")), "oldest entry lands on the last page")

	nobody := uint(999)
	empty, err := svc.ListTransactions(ctx, &nobody, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestOwnerOf(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f, Config{}, nil)

	owner, err := svc.OwnerOf(context.Background(), cardBob)
	require.NoError(t, err)
	assert.Equal(t, f.bob, owner)

	owner, err = svc.OwnerOf(context.Background(), accAlice)
	require.NoError(t, err)
	assert.Equal(t, f.alice, owner)

	_, err = svc.OwnerOf(context.Background(), "12")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
	_, err = svc.OwnerOf(context.Background(), accGone)
	assert.ErrorIs(t, err, apperrors.ErrContainerNotFound)
}
