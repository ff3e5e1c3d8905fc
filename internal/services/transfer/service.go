package transfer

import (
	"context"
	"errors"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/services/ledger"
	"bankcore/internal/utils/pagination"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// service implements the transfer Service interface.
type service struct {
	store     repositories.Store
	validator *Validator
	mutator   *Mutator
	writer    *ledger.Writer
	risk      RiskAssessor
	cfg       Config
	log       *zap.Logger
	metrics   MetricsCollector
}

// NewService creates a new transfer service instance. risk and metrics are optional.
func NewService(
	store repositories.Store,
	writer *ledger.Writer,
	risk RiskAssessor,
	cfg Config,
	log *zap.Logger,
	metrics MetricsCollector,
) Service {
	if store == nil {
		panic("store is required")
	}
	if writer == nil {
		writer = ledger.NewWriter()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeSync
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = DefaultOperationTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		store:     store,
		validator: NewValidator(cfg),
		mutator:   NewMutator(cfg.Limits),
		writer:    writer,
		risk:      risk,
		cfg:       cfg,
		log:       log.Named("transfer"),
		metrics:   metrics,
	}
}

func (s *service) Transfer(ctx context.Context, sourceID, destID string, amount decimal.Decimal) (*models.LedgerEntryView, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OpTransfer, time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	var entry *models.LedgerEntry
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		vt, err := s.validator.Validate(ctx, tx, sourceID, destID, amount)
		if err != nil {
			return err
		}

		status := models.EntryPending
		if s.cfg.Mode == ModeSync {
			if err := s.mutator.Apply(ctx, tx, vt); err != nil {
				return err
			}
			status = models.EntryCompleted
		}

		entry, err = s.writer.Record(ctx, tx, ledger.Record{
			CustomerID:  vt.Source.CustomerID(),
			Source:      sourceID,
			Destination: destID,
			Amount:      amount,
			Status:      status,
			Kind:        models.KindTransfer,
		})
		return err
	})
	if err != nil {
		derr := s.fail(err)
		s.metrics.RecordOperationResult(OpTransfer, string(derr.Kind))
		s.log.Info("transfer rejected",
			zap.String("source", sourceID),
			zap.String("destination", destID),
			zap.String("amount", amount.String()),
			zap.String("code", derr.Code),
			zap.Error(err),
		)
		return nil, derr
	}

	s.metrics.RecordOperationResult(OpTransfer, string(entry.Status))
	s.log.Info("transfer recorded",
		zap.String("transaction_id", entry.ID),
		zap.String("status", string(entry.Status)),
		zap.String("amount", amount.String()),
	)

	if entry.Status == models.EntryCompleted {
		s.metrics.RecordTransferVolume(amount)
		s.reassess(ctx, entry.CustomerID)
	}

	view := entry.View()
	return &view, nil
}

func (s *service) Precheck(sourceID, destID string, amount decimal.Decimal) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	_, err := s.validator.CheckIdentifiers(sourceID, destID)
	return err
}

func (s *service) ListTransactions(ctx context.Context, customerID *uint, page, size int) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	page, size = pagination.Normalize(page, size)
	entries, total, err := s.store.Ledger().FindAll(ctx, models.LedgerFilter{CustomerID: customerID}, size, pagination.Offset(page, size))
	if err != nil {
		s.metrics.RecordOperationResult(OpListTransactions, string(apperrors.KindInternal))
		return nil, s.fail(err)
	}

	items := make([]models.LedgerEntryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.View())
	}
	return pagination.NewPage(items, page, size, total), nil
}

func (s *service) OwnerOf(ctx context.Context, identifier string) (uint, error) {
	kind, ok := models.ParseContainerKind(identifier)
	if !ok {
		return 0, apperrors.ErrInvalidIdentifier
	}
	src, err := Resolve(ctx, s.store, identifier, kind)
	if err != nil {
		return 0, err
	}
	return src.CustomerID(), nil
}

// reassess updates the owner's risk flag. The flag is informational, so a
// failure here is logged and never fails the transfer that triggered it.
func (s *service) reassess(ctx context.Context, customerID uint) {
	if s.risk == nil {
		return
	}
	status, err := s.risk.Reassess(ctx, customerID)
	if err != nil {
		s.log.Warn("risk reassessment failed", zap.Uint("customer_id", customerID), zap.Error(err))
		return
	}
	if status == models.RiskSuspected {
		s.log.Warn("customer flagged as suspected", zap.Uint("customer_id", customerID))
	}
}

func (s *service) fail(err error) *apperrors.DomainError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.ErrTimeout.Wrap(err)
	}
	return apperrors.AsDomain(err)
}
