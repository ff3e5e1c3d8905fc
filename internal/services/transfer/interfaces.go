package transfer

import (
	"context"

	"bankcore/internal/models"

	"github.com/shopspring/decimal"
)

// Service moves money between two containers and lists the resulting ledger.
type Service interface {
	Transfer(ctx context.Context, sourceID, destID string, amount decimal.Decimal) (*models.LedgerEntryView, error)
	// Precheck runs the amount and identifier checks, which need no store access.
	Precheck(sourceID, destID string, amount decimal.Decimal) error
	// ListTransactions lists entries for one customer, or all entries when customerID is nil.
	ListTransactions(ctx context.Context, customerID *uint, page, size int) (*Page, error)
	// OwnerOf returns the customer owning the account or card behind identifier.
	OwnerOf(ctx context.Context, identifier string) (uint, error)
}
