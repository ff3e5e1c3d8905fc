// Package memory is an in-process Store used for local runs and tests.
//
// Transactions are serialized: ExecuteInTransaction holds the writer lock for
// its whole duration, works on a private copy of the data and swaps it in on
// success. Reads outside a transaction see the last committed state.
package memory

import (
	"context"
	"sort"
	"sync"

	"bankcore/internal/models"
	"bankcore/internal/repositories"
)

type state struct {
	accounts       map[string]models.Account
	cards          map[string]models.Card
	customers      map[uint]models.Customer
	nextCustomerID uint
	ledger         map[string]models.LedgerEntry
	users          map[string]models.User
	nextUserID     uint
}

func newState() *state {
	return &state{
		accounts:       map[string]models.Account{},
		cards:          map[string]models.Card{},
		customers:      map[uint]models.Customer{},
		nextCustomerID: 1,
		ledger:         map[string]models.LedgerEntry{},
		users:          map[string]models.User{},
		nextUserID:     1,
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts:       make(map[string]models.Account, len(s.accounts)),
		cards:          make(map[string]models.Card, len(s.cards)),
		customers:      make(map[uint]models.Customer, len(s.customers)),
		nextCustomerID: s.nextCustomerID,
		ledger:         make(map[string]models.LedgerEntry, len(s.ledger)),
		users:          make(map[string]models.User, len(s.users)),
		nextUserID:     s.nextUserID,
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.cards {
		c.cards[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.ledger {
		c.ledger[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store implements repositories.Store in memory.
type Store struct {
	writeMu sync.Mutex
	dataMu  sync.RWMutex
	data    *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// view is either the committed store or a transaction's private copy.
type view struct {
	root *Store
	tx   *state
}

func (s *Store) root() *view { return &view{root: s} }

func (s *Store) Accounts() repositories.AccountRepository   { return s.root().Accounts() }
func (s *Store) Cards() repositories.CardRepository         { return s.root().Cards() }
func (s *Store) Customers() repositories.CustomerRepository { return s.root().Customers() }
func (s *Store) Ledger() repositories.LedgerRepository      { return s.root().Ledger() }
func (s *Store) Users() repositories.UserRepository         { return s.root().Users() }

func (s *Store) LockAccounts(ctx context.Context, numbers ...string) (map[string]*models.Account, error) {
	return s.root().LockAccounts(ctx, numbers...)
}

func (s *Store) LockLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	return s.root().LockLedgerEntry(ctx, id)
}

func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	return s.root().ExecuteInTransaction(ctx, fn)
}

func (v *view) Accounts() repositories.AccountRepository   { return &accountRepo{v} }
func (v *view) Cards() repositories.CardRepository         { return &cardRepo{v} }
func (v *view) Customers() repositories.CustomerRepository { return &customerRepo{v} }
func (v *view) Ledger() repositories.LedgerRepository      { return &ledgerRepo{v} }
func (v *view) Users() repositories.UserRepository         { return &userRepo{v} }

func (v *view) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		// Already inside a transaction: join it.
		return fn(v)
	}

	v.root.writeMu.Lock()
	defer v.root.writeMu.Unlock()

	v.root.dataMu.RLock()
	working := v.root.data.clone()
	v.root.dataMu.RUnlock()

	if err := fn(&view{root: v.root, tx: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	v.root.dataMu.Lock()
	v.root.data = working
	v.root.dataMu.Unlock()
	return nil
}

// LockAccounts needs no row locks here: the writer lock already serializes
// transactions. Ordering and not-found semantics match the SQL store.
func (v *view) LockAccounts(ctx context.Context, numbers ...string) (map[string]*models.Account, error) {
	sorted := append([]string(nil), numbers...)
	sort.Strings(sorted)

	out := make(map[string]*models.Account, len(sorted))
	err := v.read(ctx, func(st *state) error {
		for _, n := range sorted {
			acc, ok := st.accounts[n]
			if !ok {
				return repositories.ErrNotFound
			}
			out[n] = &acc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (v *view) LockLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	return v.Ledger().GetByID(ctx, id)
}

func (v *view) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.root.dataMu.RLock()
	defer v.root.dataMu.RUnlock()
	return fn(v.root.data)
}

// write applies fn to the committed state directly when called outside a
// transaction. fn must leave the state untouched when it returns an error.
func (v *view) write(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.root.writeMu.Lock()
	defer v.root.writeMu.Unlock()
	v.root.dataMu.Lock()
	defer v.root.dataMu.Unlock()
	return fn(v.root.data)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func hasStatus(s models.ContainerStatus, statuses []models.ContainerStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}
