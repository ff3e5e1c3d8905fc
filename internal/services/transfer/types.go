package transfer

import (
	"context"
	"time"

	"bankcore/internal/models"
	"bankcore/internal/utils/pagination"

	"github.com/shopspring/decimal"
)

// Mode selects when balances move.
type Mode string

const (
	// ModeSync mutates balances inline and records a COMPLETED entry.
	ModeSync Mode = "sync"
	// ModeDeferred records a PENDING entry and leaves the mutation to settlement.
	ModeDeferred Mode = "deferred"
)

// Config holds configuration for transfer operations
type Config struct {
	Mode                 Mode
	ContainerMode        models.ContainerMode
	AllowSelfTransfer    bool
	BlockSuspectedOwners bool
	Limits               models.LimitPolicy
	OperationTimeout     time.Duration
}

// ValidatedTransfer is the outcome of a successful validation, resolved
// against the snapshot the validator read.
type ValidatedTransfer struct {
	Source      models.TransferSource
	Destination models.TransferSource
	Amount      decimal.Decimal
}

// Page is one page of ledger entries.
type Page = pagination.Page[models.LedgerEntryView]

// RiskAssessor re-evaluates an owner's rolling transfer volume.
type RiskAssessor interface {
	Reassess(ctx context.Context, customerID uint) (models.RiskStatus, error)
}

// MetricsCollector defines the interface for collecting transfer metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordTransferVolume(amount decimal.Decimal)
}
