// Package settlement applies PENDING ledger entries in batch.
package settlement

import (
	"context"
	"errors"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/repositories/cache"
	"bankcore/internal/services/transfer"
	cachekeys "bankcore/internal/utils/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultEntryTimeout = 10 * time.Second
	reportTTL           = 7 * 24 * time.Hour
)

// errRaced is returned from inside the entry transaction when another
// settler moved the entry first; the transaction rolls back.
var errRaced = errors.New("entry left PENDING during settlement")

// RiskAssessor reads and refreshes an owner's risk flag.
type RiskAssessor interface {
	Status(ctx context.Context, customerID uint) (models.RiskStatus, error)
	Reassess(ctx context.Context, customerID uint) (models.RiskStatus, error)
}

type Config struct {
	// EntryTimeout bounds the work done for a single entry.
	EntryTimeout time.Duration
}

// Report summarises one settlement run.
type Report struct {
	RunID            string    `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Fetched          int       `json:"fetched"`
	Completed        int       `json:"completed"`
	Failed           int       `json:"failed"`
	Skipped          int       `json:"skipped"`
	Interrupted      int       `json:"interrupted"`
	Failures         []Failure `json:"failures"`
	FlaggedCustomers []uint    `json:"flagged_customers"`
}

type Failure struct {
	TransactionID string `json:"transaction_id"`
	Code          string `json:"code"`
	Reason        string `json:"reason"`
}

type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeFailed
	outcomeSkipped
	// outcomeInterrupted means the run itself was cancelled; the entry stays
	// PENDING for the next run.
	outcomeInterrupted
)

type Engine struct {
	store     repositories.Store
	validator *transfer.Validator
	mutator   *transfer.Mutator
	risk      RiskAssessor
	locker    cache.Locker
	reports   cache.Cache
	cfg       Config
	now       func() time.Time
	log       *zap.Logger
}

func NewEngine(
	store repositories.Store,
	validator *transfer.Validator,
	mutator *transfer.Mutator,
	risk RiskAssessor,
	locker cache.Locker,
	reports cache.Cache,
	cfg Config,
	log *zap.Logger,
) *Engine {
	if cfg.EntryTimeout <= 0 {
		cfg.EntryTimeout = DefaultEntryTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:     store,
		validator: validator,
		mutator:   mutator,
		risk:      risk,
		locker:    locker,
		reports:   reports,
		cfg:       cfg,
		now:       time.Now,
		log:       log.Named("settlement"),
	}
}

// WithClock overrides the time stamped on settled entries and reports.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// RunOnce settles every PENDING entry, oldest first. Each entry is handled in
// its own transaction; a failing entry is marked FAILED and the run moves on.
// Only one run may be active at a time.
func (e *Engine) RunOnce(ctx context.Context) (*Report, error) {
	handle, acquired, err := e.locker.TryLock(ctx, cachekeys.SettlementRunLockKey)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !acquired {
		e.log.Info("settlement run skipped, another run holds the lock")
		return nil, apperrors.ErrSettlementInProgress
	}
	defer func() {
		if err := handle.Unlock(context.WithoutCancel(ctx)); err != nil {
			e.log.Warn("failed to release settlement lock", zap.Error(err))
		}
	}()

	report := &Report{
		RunID:            uuid.NewString(),
		StartedAt:        e.now(),
		Failures:         []Failure{},
		FlaggedCustomers: []uint{},
	}
	log := e.log.With(zap.String("run_id", report.RunID))

	pending, err := e.store.Ledger().FindByStatus(ctx, models.EntryPending)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	report.Fetched = len(pending)
	log.Info("settlement run started", zap.Int("pending", len(pending)))

	flagged := map[uint]bool{}
entries:
	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			log.Warn("settlement run interrupted", zap.Error(err))
			break
		}

		e.logRisk(ctx, log, entry.CustomerID)

		result, derr := e.settle(ctx, entry)
		switch result {
		case outcomeCompleted:
			report.Completed++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
			report.Failures = append(report.Failures, Failure{
				TransactionID: entry.ID,
				Code:          derr.Code,
				Reason:        derr.Message,
			})
			log.Info("entry failed", zap.String("transaction_id", entry.ID), zap.String("code", derr.Code))
		case outcomeInterrupted:
			report.Interrupted++
			log.Warn("settlement run interrupted, entry left PENDING",
				zap.String("transaction_id", entry.ID), zap.Error(ctx.Err()))
			break entries
		}

		// The owner is reassessed whatever happened to the entry.
		if e.reassess(ctx, log, entry.CustomerID) && !flagged[entry.CustomerID] {
			flagged[entry.CustomerID] = true
			report.FlaggedCustomers = append(report.FlaggedCustomers, entry.CustomerID)
		}
	}

	report.FinishedAt = e.now()
	log.Info("settlement run finished",
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int("interrupted", report.Interrupted),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)

	if e.reports != nil {
		if err := e.reports.SetWithTTL(context.WithoutCancel(ctx), cachekeys.SettlementLastReportKey, report, reportTTL); err != nil {
			log.Warn("failed to cache settlement report", zap.Error(err))
		}
	}
	return report, nil
}

// LastReport returns the most recent cached report, or nil when none exists.
func (e *Engine) LastReport(ctx context.Context) (*Report, error) {
	if e.reports == nil {
		return nil, nil
	}
	var report Report
	found, err := e.reports.Get(ctx, cachekeys.SettlementLastReportKey, &report)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !found {
		return nil, nil
	}
	return &report, nil
}

func (e *Engine) settle(runCtx context.Context, entry *models.LedgerEntry) (outcome, *apperrors.DomainError) {
	ctx, cancel := context.WithTimeout(runCtx, e.cfg.EntryTimeout)
	defer cancel()

	skipped := false
	err := e.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.LockLedgerEntry(ctx, entry.ID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if locked.Status != models.EntryPending {
			skipped = true
			return nil
		}

		vt, err := e.validator.Validate(ctx, tx, locked.Source, locked.Destination, locked.Amount)
		if err != nil {
			return err
		}
		if err := e.mutator.Apply(ctx, tx, vt); err != nil {
			return err
		}

		moved, err := tx.Ledger().MarkTerminal(ctx, locked.ID, models.EntryCompleted, "", e.now())
		if err != nil {
			return apperrors.Internal(err)
		}
		if !moved {
			return errRaced
		}
		return nil
	})
	switch {
	case err == nil && skipped, errors.Is(err, errRaced):
		return outcomeSkipped, nil
	case err == nil:
		return outcomeCompleted, nil
	}

	if runCtx.Err() != nil {
		return outcomeInterrupted, nil
	}

	derr := apperrors.AsDomain(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		derr = apperrors.ErrTimeout.Wrap(err)
	}

	// The failure is recorded outside the rolled-back transaction, and only
	// while the entry is still PENDING.
	moved, merr := e.store.Ledger().MarkTerminal(context.WithoutCancel(ctx), entry.ID, models.EntryFailed, derr.Message, e.now())
	if merr != nil {
		e.log.Error("failed to mark entry FAILED", zap.String("transaction_id", entry.ID), zap.Error(merr))
		return outcomeFailed, derr
	}
	if !moved {
		return outcomeSkipped, nil
	}
	return outcomeFailed, derr
}

func (e *Engine) logRisk(ctx context.Context, log *zap.Logger, customerID uint) {
	if e.risk == nil {
		return
	}
	status, err := e.risk.Status(ctx, customerID)
	if err != nil {
		log.Warn("risk status unavailable", zap.Uint("customer_id", customerID), zap.Error(err))
		return
	}
	if status == models.RiskSuspected {
		log.Info("settling entry for suspected customer", zap.Uint("customer_id", customerID))
	}
}

// reassess reports whether this call moved the customer to SUSPECTED.
func (e *Engine) reassess(ctx context.Context, log *zap.Logger, customerID uint) bool {
	if e.risk == nil {
		return false
	}
	before, err := e.risk.Status(ctx, customerID)
	if err != nil {
		log.Warn("risk status unavailable", zap.Uint("customer_id", customerID), zap.Error(err))
		return false
	}
	after, err := e.risk.Reassess(ctx, customerID)
	if err != nil {
		log.Warn("risk reassessment failed", zap.Uint("customer_id", customerID), zap.Error(err))
		return false
	}
	return before != models.RiskSuspected && after == models.RiskSuspected
}
