package settlement

import (
	"context"
	"testing"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories/cache"
	"bankcore/internal/repositories/memory"
	"bankcore/internal/services/risk"
	"bankcore/internal/services/transfer"
	cachekeys "bankcore/internal/utils/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	accA = "11111111111111111111"
	accB = "22222222222222222222"
	accC = "33333333333333333333"
)

type harness struct {
	store   *memory.Store
	engine  *Engine
	locker  *cache.LocalLocker
	reports *cache.LocalCache
	owner   uint
	other   uint
}

func newHarness(t *testing.T, limits models.LimitPolicy) *harness {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	owner := &models.Customer{FirstName: "Owner", FIN: "OWN0001", Email: "o@bank.test", Phone: "+1", RiskStatus: models.RiskRegular}
	other := &models.Customer{FirstName: "Other", FIN: "OTH0002", Email: "x@bank.test", Phone: "+2", RiskStatus: models.RiskRegular}
	require.NoError(t, store.Customers().Create(ctx, owner))
	require.NoError(t, store.Customers().Create(ctx, other))

	now := time.Now()
	for _, a := range []struct {
		number  string
		owner   uint
		balance string
	}{{accA, owner.ID, "1000"}, {accB, other.ID, "0"}, {accC, other.ID, "100"}} {
		require.NoError(t, store.Accounts().Create(ctx, &models.Account{
			Number: a.number, CustomerID: a.owner, Balance: decimal.RequireFromString(a.balance),
			Status: models.StatusActive, OpenedAt: now, ExpiresAt: now.AddDate(10, 0, 0),
		}))
	}

	locker := cache.NewLocalLocker()
	reports := cache.NewLocalCache(time.Hour)
	cfg := transfer.Config{Limits: limits}
	engine := NewEngine(
		store,
		transfer.NewValidator(cfg),
		transfer.NewMutator(limits),
		risk.NewService(store, limits, nil),
		locker,
		reports,
		Config{},
		zaptest.NewLogger(t),
	)
	return &harness{store: store, engine: engine, locker: locker, reports: reports, owner: owner.ID, other: other.ID}
}

func (h *harness) pending(t *testing.T, id string, customer uint, src, dst, amount string, age time.Duration) {
	t.Helper()
	require.NoError(t, h.store.Ledger().Create(context.Background(), &models.LedgerEntry{
		ID: id, CustomerID: customer, Source: src, Destination: dst,
		Amount: decimal.RequireFromString(amount), Date: time.Now().Add(-age),
		Status: models.EntryPending, Kind: models.KindTransfer,
	}))
}

func (h *harness) entry(t *testing.T, id string) *models.LedgerEntry {
	t.Helper()
	e, err := h.store.Ledger().GetByID(context.Background(), id)
	require.NoError(t, err)
	return e
}

func (h *harness) balance(t *testing.T, number string) string {
	t.Helper()
	a, err := h.store.Accounts().GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return a.Balance.String()
}

func TestRunOnce_FailsOnlyTheBrokenEntry(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", 3*time.Minute)
	h.pending(t, "TR000000000000000002", h.other, accC, accB, "50", 2*time.Minute)
	h.pending(t, "TR000000000000000003", h.owner, accA, accB, "200", time.Minute)

	a, err := h.store.Accounts().GetByNumber(context.Background(), accC)
	require.NoError(t, err)
	a.Status = models.StatusExpired
	require.NoError(t, h.store.Accounts().Update(context.Background(), a))

	report, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, report.Skipped)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "TR000000000000000002", report.Failures[0].TransactionID)
	assert.Equal(t, apperrors.ErrContainerNotActive.Code, report.Failures[0].Code)
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, models.EntryCompleted, h.entry(t, "TR000000000000000001").Status)
	failed := h.entry(t, "TR000000000000000002")
	assert.Equal(t, models.EntryFailed, failed.Status)
	assert.NotEmpty(t, failed.FailureReason)
	assert.NotNil(t, failed.SettledAt)
	assert.Equal(t, models.EntryCompleted, h.entry(t, "TR000000000000000003").Status)

	assert.Equal(t, "700", h.balance(t, accA))
	assert.Equal(t, "300", h.balance(t, accB))
	assert.Equal(t, "100", h.balance(t, accC))
}

func TestRunOnce_InsufficientFundsAfterEarlierEntries(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "800", 2*time.Minute)
	h.pending(t, "TR000000000000000002", h.owner, accA, accB, "300", time.Minute)

	report, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, apperrors.ErrInsufficientFunds.Code, report.Failures[0].Code)
	assert.Equal(t, "200", h.balance(t, accA))
}

func TestRunOnce_FlagsOwnerWithoutTouchingSettledEntries(t *testing.T) {
	limits := models.DefaultLimitPolicy()
	limits.MonthlyTransferLimit = decimal.NewFromInt(250)
	h := newHarness(t, limits)
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "200", 2*time.Minute)
	h.pending(t, "TR000000000000000002", h.owner, accA, accB, "100", time.Minute)

	report, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, []uint{h.owner}, report.FlaggedCustomers)

	c, err := h.store.Customers().GetByID(context.Background(), h.owner)
	require.NoError(t, err)
	assert.Equal(t, models.RiskSuspected, c.RiskStatus)
	assert.Equal(t, models.EntryCompleted, h.entry(t, "TR000000000000000001").Status)
	assert.Equal(t, models.EntryCompleted, h.entry(t, "TR000000000000000002").Status)
	assert.Equal(t, "700", h.balance(t, accA))
}

func TestRunOnce_SecondRunFindsNothing(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", time.Minute)

	_, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)

	report, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Fetched)
	assert.Equal(t, "900", h.balance(t, accA))
}

func TestSettle_SkipsEntryAlreadySettled(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", time.Minute)
	stale := h.entry(t, "TR000000000000000001")

	moved, err := h.store.Ledger().MarkTerminal(context.Background(), stale.ID, models.EntryCompleted, "", time.Now())
	require.NoError(t, err)
	require.True(t, moved)

	result, derr := h.engine.settle(context.Background(), stale)
	assert.Equal(t, outcomeSkipped, result)
	assert.Nil(t, derr)
	assert.Equal(t, "1000", h.balance(t, accA))
}

func TestRunOnce_RefusesWhileAnotherRunHoldsTheLock(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", time.Minute)

	handle, ok, err := h.locker.TryLock(context.Background(), cachekeys.SettlementRunLockKey)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = h.engine.RunOnce(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSettlementInProgress)
	assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))
	assert.Equal(t, models.EntryPending, h.entry(t, "TR000000000000000001").Status)

	require.NoError(t, handle.Unlock(context.Background()))
	_, err = h.engine.RunOnce(context.Background())
	assert.NoError(t, err)
}

func TestLastReport(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())

	none, err := h.engine.LastReport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, none)

	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", time.Minute)
	report, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)

	last, err := h.engine.LastReport(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, report.RunID, last.RunID)
	assert.Equal(t, 1, last.Completed)
}

func TestRunOnce_WithRedisLockAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := newHarness(t, models.DefaultLimitPolicy())
	log := zaptest.NewLogger(t)
	h.engine.locker = cache.NewRedisLockManager(client, time.Minute, log)
	h.engine.reports = cache.NewCacheService(client, time.Hour)
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", time.Minute)

	report, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)
	assert.True(t, mr.Exists(cachekeys.SettlementLastReportKey))
	assert.False(t, mr.Exists(cachekeys.SettlementRunLockKey), "lock released after the run")

	last, err := h.engine.LastReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.RunID, last.RunID)
}

func TestRunOnce_ReassessesOwnerOfFailedEntry(t *testing.T) {
	limits := models.DefaultLimitPolicy()
	limits.MonthlyTransferLimit = decimal.NewFromInt(250)
	h := newHarness(t, limits)
	require.NoError(t, h.store.Ledger().Create(context.Background(), &models.LedgerEntry{
		ID: "TR000000000000000001", CustomerID: h.owner, Source: accA, Destination: accB,
		Amount: decimal.NewFromInt(300), Date: time.Now().Add(-time.Hour),
		Status: models.EntryCompleted, Kind: models.KindTransfer,
	}))
	h.pending(t, "TR000000000000000002", h.owner, accA, accB, "5000", time.Minute)

	report, err := h.engine.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, apperrors.ErrInsufficientFunds.Code, report.Failures[0].Code)
	assert.Equal(t, []uint{h.owner}, report.FlaggedCustomers)

	c, err := h.store.Customers().GetByID(context.Background(), h.owner)
	require.NoError(t, err)
	assert.Equal(t, models.RiskSuspected, c.RiskStatus)
	assert.Equal(t, "1000", h.balance(t, accA))
}

func TestSettle_CancelledRunLeavesEntryPending(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, derr := h.engine.settle(ctx, h.entry(t, "TR000000000000000001"))
	assert.Equal(t, outcomeInterrupted, result)
	assert.Nil(t, derr)

	stored := h.entry(t, "TR000000000000000001")
	assert.Equal(t, models.EntryPending, stored.Status)
	assert.Empty(t, stored.FailureReason)
	assert.Equal(t, "1000", h.balance(t, accA))
}

// cancellingRisk cancels the run the first time an owner is looked at.
type cancellingRisk struct {
	cancel context.CancelFunc
}

func (r cancellingRisk) Status(context.Context, uint) (models.RiskStatus, error) {
	r.cancel()
	return models.RiskRegular, nil
}

func (r cancellingRisk) Reassess(context.Context, uint) (models.RiskStatus, error) {
	return models.RiskRegular, nil
}

func TestRunOnce_StopsWhenCancelledMidRun(t *testing.T) {
	h := newHarness(t, models.DefaultLimitPolicy())
	h.pending(t, "TR000000000000000001", h.owner, accA, accB, "100", 2*time.Minute)
	h.pending(t, "TR000000000000000002", h.owner, accA, accB, "50", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.engine.risk = cancellingRisk{cancel: cancel}

	report, err := h.engine.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 1, report.Interrupted)
	assert.Zero(t, report.Completed)
	assert.Zero(t, report.Failed)
	assert.Equal(t, models.EntryPending, h.entry(t, "TR000000000000000001").Status)
	assert.Equal(t, models.EntryPending, h.entry(t, "TR000000000000000002").Status)
	assert.Equal(t, "1000", h.balance(t, accA))
}
