package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bankcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by gorm.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Accounts() AccountRepository   { return &accountRepository{db: s.db} }
func (s *gormStore) Cards() CardRepository         { return &cardRepository{db: s.db} }
func (s *gormStore) Customers() CustomerRepository { return &customerRepository{db: s.db} }
func (s *gormStore) Ledger() LedgerRepository      { return &ledgerRepository{db: s.db} }
func (s *gormStore) Users() UserRepository         { return &userRepository{db: s.db} }

func (s *gormStore) ExecuteInTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) LockAccounts(ctx context.Context, numbers ...string) (map[string]*models.Account, error) {
	locked := make(map[string]*models.Account, len(numbers))
	for _, n := range canonicalOrder(numbers) {
		var acc models.Account
		err := s.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("number = ?", n).
			First(&acc).Error
		if err != nil {
			return nil, translate(err, "failed to lock account")
		}
		locked[n] = &acc
	}
	return locked, nil
}

func (s *gormStore) LockLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, translate(err, "failed to lock ledger entry")
	}
	return &entry, nil
}

// canonicalOrder sorts and de-duplicates identifiers so that concurrent
// transactions always acquire row locks in the same sequence.
func canonicalOrder(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", msg, err)
}
