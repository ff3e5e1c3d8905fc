package repositories

import (
	"context"
	"errors"
	"time"

	"bankcore/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// AccountRepository persists accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByNumber(ctx context.Context, number string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Exists(ctx context.Context, number string) (bool, error)
	CountByCustomer(ctx context.Context, customerID uint, statuses ...models.ContainerStatus) (int64, error)
	ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Account, int64, error)
	// ListOverdue returns accounts past their expiry date that are not yet EXPIRED.
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Account, error)
}

// CardRepository persists cards.
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByNumber(ctx context.Context, number string) (*models.Card, error)
	Update(ctx context.Context, card *models.Card) error
	Exists(ctx context.Context, number string) (bool, error)
	CountByAccount(ctx context.Context, accountNumber string, statuses ...models.ContainerStatus) (int64, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*models.Card, int64, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Card, error)
}

// CustomerRepository persists account owners.
type CustomerRepository interface {
	// Create assigns the ID. A FIN, email or phone clash yields ErrDuplicate.
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*models.Customer, int64, error)
	UpdateRiskStatus(ctx context.Context, id uint, status models.RiskStatus) error
}

// LedgerRepository persists ledger entries.
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.LedgerEntry, error)
	// FindByStatus returns entries oldest first.
	FindByStatus(ctx context.Context, status models.EntryStatus) ([]*models.LedgerEntry, error)
	// FindAll returns entries newest first.
	FindAll(ctx context.Context, filter models.LedgerFilter, limit, offset int) ([]*models.LedgerEntry, int64, error)
	// MarkTerminal moves a PENDING entry to status. It reports false when the
	// entry had already left PENDING.
	MarkTerminal(ctx context.Context, id string, status models.EntryStatus, reason string, at time.Time) (bool, error)
	// SumTransferred totals COMPLETED transfers for a customer with from <= date <= to.
	SumTransferred(ctx context.Context, customerID uint, from, to time.Time) (decimal.Decimal, error)
}

// UserRepository persists login principals.
type UserRepository interface {
	// Create assigns the ID. A username clash yields ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// List returns users ordered by username.
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
}

// Store groups the repositories behind one commit boundary.
type Store interface {
	Accounts() AccountRepository
	Cards() CardRepository
	Customers() CustomerRepository
	Ledger() LedgerRepository
	Users() UserRepository

	// LockAccounts loads the given accounts for update, locking them in
	// ascending number order. Only meaningful inside ExecuteInTransaction.
	LockAccounts(ctx context.Context, numbers ...string) (map[string]*models.Account, error)
	// LockLedgerEntry loads an entry for update.
	LockLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error)

	ExecuteInTransaction(ctx context.Context, fn func(Store) error) error
}
