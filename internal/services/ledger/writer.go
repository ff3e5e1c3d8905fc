// Package ledger allocates transaction identifiers and persists ledger entries.
package ledger

import (
	"context"
	"errors"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/utils"

	"github.com/shopspring/decimal"
)

const (
	IDPrefix           = "TR"
	idDigits           = 18
	DefaultMaxAttempts = 5
)

// IDGenerator produces candidate transaction identifiers.
type IDGenerator func() (string, error)

// RandomID yields "TR" followed by 18 random digits.
func RandomID() (string, error) {
	digits, err := utils.RandomDigits(idDigits)
	if err != nil {
		return "", err
	}
	return IDPrefix + digits, nil
}

// Record describes an entry to write.
type Record struct {
	CustomerID  uint
	Source      string
	Destination string
	Amount      decimal.Decimal
	Status      models.EntryStatus
	Kind        models.EntryKind
}

type Writer struct {
	newID       IDGenerator
	now         func() time.Time
	maxAttempts int
}

type Option func(*Writer)

func WithIDGenerator(g IDGenerator) Option { return func(w *Writer) { w.newID = g } }

func WithClock(now func() time.Time) Option { return func(w *Writer) { w.now = now } }

func WithMaxAttempts(n int) Option { return func(w *Writer) { w.maxAttempts = n } }

func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		newID:       RandomID,
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.maxAttempts < 1 {
		w.maxAttempts = 1
	}
	return w
}

// Record persists rec under a freshly allocated identifier. An identifier is
// only used once the store confirms it is absent; a duplicate-key race on
// insert is retried with a new candidate.
func (w *Writer) Record(ctx context.Context, store repositories.Store, rec Record) (*models.LedgerEntry, error) {
	if rec.Kind == "" {
		rec.Kind = models.KindTransfer
	}

	for attempt := 0; attempt < w.maxAttempts; attempt++ {
		id, err := w.newID()
		if err != nil {
			return nil, apperrors.Internal(err)
		}

		taken, err := store.Ledger().Exists(ctx, id)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if taken {
			continue
		}

		entry := &models.LedgerEntry{
			ID:          id,
			CustomerID:  rec.CustomerID,
			Source:      rec.Source,
			Destination: rec.Destination,
			Amount:      rec.Amount,
			Date:        w.now(),
			Status:      rec.Status,
			Kind:        rec.Kind,
		}
		if rec.Status.Terminal() {
			settled := entry.Date
			entry.SettledAt = &settled
		}

		// Nested so a duplicate-key failure only rolls back to a savepoint.
		err = store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
			return tx.Ledger().Create(ctx, entry)
		})
		if errors.Is(err, repositories.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		return entry, nil
	}
	return nil, apperrors.ErrIDAllocation
}
