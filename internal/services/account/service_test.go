package account

import (
	"context"
	"testing"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, maxAccounts int) (*memory.Store, Service, uint) {
	t.Helper()
	store := memory.NewStore()
	c := &models.Customer{FirstName: "Kamal", FIN: "KAM0001", Email: "k@bank.test", Phone: "+1", RiskStatus: models.RiskRegular}
	require.NoError(t, store.Customers().Create(context.Background(), c))

	limits := models.DefaultLimitPolicy()
	limits.MaxAccountsPerOwner = maxAccounts
	return store, NewService(store, nil, limits, nil), c.ID
}

func TestCreate(t *testing.T) {
	_, svc, owner := setup(t, 5)
	opened := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return opened }

	acc, err := svc.Create(context.Background(), owner)
	require.NoError(t, err)

	assert.Regexp(t, `^\d{20}$`, acc.Number)
	assert.Equal(t, models.StatusNew, acc.Status)
	assert.True(t, acc.Balance.IsZero())
	assert.Equal(t, owner, acc.CustomerID)
	assert.Equal(t, time.Date(2036, 1, 15, 9, 0, 0, 0, time.UTC), acc.ExpiresAt)
}

func TestCreate_UnknownOwner(t *testing.T) {
	_, svc, _ := setup(t, 5)
	_, err := svc.Create(context.Background(), 777)
	assert.ErrorIs(t, err, apperrors.ErrOwnerNotFound)
}

func TestCreate_LimitCountsOnlyOpenAccounts(t *testing.T) {
	store, svc, owner := setup(t, 2)
	ctx := context.Background()

	first, err := svc.Create(ctx, owner)
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner)
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner)
	assert.ErrorIs(t, err, apperrors.ErrAccountLimitReached)
	assert.Equal(t, apperrors.KindLimitExceeded, apperrors.KindOf(err))

	first.Status = models.StatusExpired
	require.NoError(t, store.Accounts().Update(ctx, first))
	_, err = svc.Create(ctx, owner)
	assert.NoError(t, err)
}

func TestActivate(t *testing.T) {
	_, svc, owner := setup(t, 5)
	ctx := context.Background()
	acc, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	active, err := svc.Activate(ctx, acc.Number)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, active.Status)

	_, err = svc.Activate(ctx, acc.Number)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))

	_, err = svc.Activate(ctx, "00000000000000000000")
	assert.ErrorIs(t, err, apperrors.ErrContainerNotFound)
}

func TestDeposit(t *testing.T) {
	store, svc, owner := setup(t, 5)
	ctx := context.Background()
	acc, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, acc.Number, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, apperrors.ErrContainerNotActive, "NEW accounts take no deposits")

	_, err = svc.Activate(ctx, acc.Number)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, acc.Number, decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	res, err := svc.Deposit(ctx, acc.Number, decimal.RequireFromString("250.75"))
	require.NoError(t, err)
	assert.Equal(t, "250.75", res.Account.Balance.String())
	assert.Equal(t, models.SourceAccountDeposit, res.Entry.Debit)
	assert.Equal(t, acc.Number, res.Entry.Credit)
	assert.Equal(t, models.KindDeposit, res.Entry.Kind)
	assert.Equal(t, models.EntryCompleted, res.Entry.Status)

	stored, err := store.Accounts().GetByNumber(ctx, acc.Number)
	require.NoError(t, err)
	assert.Equal(t, "250.75", stored.Balance.String())

	sum, err := store.Ledger().SumTransferred(ctx, owner, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "deposits do not count toward the transfer limit")
}

func TestListByCustomer(t *testing.T) {
	_, svc, owner := setup(t, 5)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, owner)
		require.NoError(t, err)
	}

	p, err := svc.ListByCustomer(ctx, owner, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Total)
	assert.Len(t, p.Items, 2)

	empty, err := svc.ListByCustomer(ctx, 999, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestExpireOverdue(t *testing.T) {
	store, svc, owner := setup(t, 5)
	ctx := context.Background()
	now := time.Now()

	for number, expires := range map[string]time.Time{
		"10000000000000000001": now.Add(-time.Hour),
		"10000000000000000002": now.Add(time.Hour),
	} {
		require.NoError(t, store.Accounts().Create(ctx, &models.Account{
			Number: number, CustomerID: owner, Status: models.StatusActive,
			OpenedAt: now.AddDate(-10, 0, 0), ExpiresAt: expires,
		}))
	}

	n, err := svc.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	gone, err := store.Accounts().GetByNumber(ctx, "10000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, gone.Status)
	kept, err := store.Accounts().GetByNumber(ctx, "10000000000000000002")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, kept.Status)

	n, err = svc.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
