package memory

import (
	"context"
	"sort"
	"time"

	"bankcore/internal/models"
	"bankcore/internal/repositories"

	"github.com/shopspring/decimal"
)

type accountRepo struct{ v *view }

func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.accounts[account.Number]; ok {
			return repositories.ErrDuplicate
		}
		now := time.Now()
		account.CreatedAt, account.UpdatedAt = now, now
		st.accounts[account.Number] = *account
		return nil
	})
}

func (r *accountRepo) GetByNumber(ctx context.Context, number string) (*models.Account, error) {
	var out *models.Account
	err := r.v.read(ctx, func(st *state) error {
		acc, ok := st.accounts[number]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &acc
		return nil
	})
	return out, err
}

func (r *accountRepo) Update(ctx context.Context, account *models.Account) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.accounts[account.Number]; !ok {
			return repositories.ErrNotFound
		}
		account.UpdatedAt = time.Now()
		st.accounts[account.Number] = *account
		return nil
	})
}

func (r *accountRepo) Exists(ctx context.Context, number string) (bool, error) {
	var ok bool
	err := r.v.read(ctx, func(st *state) error {
		_, ok = st.accounts[number]
		return nil
	})
	return ok, err
}

func (r *accountRepo) CountByCustomer(ctx context.Context, customerID uint, statuses ...models.ContainerStatus) (int64, error) {
	var n int64
	err := r.v.read(ctx, func(st *state) error {
		for _, acc := range st.accounts {
			if acc.CustomerID == customerID && hasStatus(acc.Status, statuses) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *accountRepo) ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Account, int64, error) {
	var all []*models.Account
	err := r.v.read(ctx, func(st *state) error {
		for _, acc := range st.accounts {
			if acc.CustomerID == customerID {
				acc := acc
				all = append(all, &acc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].OpenedAt.Equal(all[j].OpenedAt) {
			return all[i].OpenedAt.Before(all[j].OpenedAt)
		}
		return all[i].Number < all[j].Number
	})
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *accountRepo) ListOverdue(ctx context.Context, now time.Time) ([]*models.Account, error) {
	var out []*models.Account
	err := r.v.read(ctx, func(st *state) error {
		for _, acc := range st.accounts {
			if acc.Status != models.StatusExpired && !acc.ExpiresAt.After(now) {
				acc := acc
				out = append(out, &acc)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, err
}

type cardRepo struct{ v *view }

func (r *cardRepo) Create(ctx context.Context, card *models.Card) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.cards[card.Number]; ok {
			return repositories.ErrDuplicate
		}
		now := time.Now()
		card.CreatedAt, card.UpdatedAt = now, now
		st.cards[card.Number] = *card
		return nil
	})
}

func (r *cardRepo) GetByNumber(ctx context.Context, number string) (*models.Card, error) {
	var out *models.Card
	err := r.v.read(ctx, func(st *state) error {
		c, ok := st.cards[number]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *cardRepo) Update(ctx context.Context, card *models.Card) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.cards[card.Number]; !ok {
			return repositories.ErrNotFound
		}
		card.UpdatedAt = time.Now()
		st.cards[card.Number] = *card
		return nil
	})
}

func (r *cardRepo) Exists(ctx context.Context, number string) (bool, error) {
	var ok bool
	err := r.v.read(ctx, func(st *state) error {
		_, ok = st.cards[number]
		return nil
	})
	return ok, err
}

func (r *cardRepo) CountByAccount(ctx context.Context, accountNumber string, statuses ...models.ContainerStatus) (int64, error) {
	var n int64
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.cards {
			if c.AccountNumber == accountNumber && hasStatus(c.Status, statuses) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *cardRepo) ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*models.Card, int64, error) {
	var all []*models.Card
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.cards {
			if c.AccountNumber == accountNumber {
				c := c
				all = append(all, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].IssuedAt.Equal(all[j].IssuedAt) {
			return all[i].IssuedAt.Before(all[j].IssuedAt)
		}
		return all[i].Number < all[j].Number
	})
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *cardRepo) ListOverdue(ctx context.Context, now time.Time) ([]*models.Card, error) {
	var out []*models.Card
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.cards {
			if c.Status != models.StatusExpired && !c.ExpiresAt.After(now) {
				c := c
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, err
}

type customerRepo struct{ v *view }

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	return r.v.write(ctx, func(st *state) error {
		for _, c := range st.customers {
			if c.FIN == customer.FIN || c.Email == customer.Email || c.Phone == customer.Phone {
				return repositories.ErrDuplicate
			}
		}
		customer.ID = st.nextCustomerID
		st.nextCustomerID++
		now := time.Now()
		customer.CreatedAt, customer.UpdatedAt = now, now
		st.customers[customer.ID] = *customer
		return nil
	})
}

func (r *customerRepo) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var out *models.Customer
	err := r.v.read(ctx, func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *customerRepo) List(ctx context.Context, limit, offset int) ([]*models.Customer, int64, error) {
	var all []*models.Customer
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.customers {
			c := c
			all = append(all, &c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *customerRepo) UpdateRiskStatus(ctx context.Context, id uint, status models.RiskStatus) error {
	return r.v.write(ctx, func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return repositories.ErrNotFound
		}
		c.RiskStatus = status
		c.UpdatedAt = time.Now()
		st.customers[id] = c
		return nil
	})
}

type ledgerRepo struct{ v *view }

func (r *ledgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.ledger[entry.ID]; ok {
			return repositories.ErrDuplicate
		}
		now := time.Now()
		entry.CreatedAt, entry.UpdatedAt = now, now
		st.ledger[entry.ID] = *entry
		return nil
	})
}

func (r *ledgerRepo) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.v.read(ctx, func(st *state) error {
		_, ok = st.ledger[id]
		return nil
	})
	return ok, err
}

func (r *ledgerRepo) GetByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	var out *models.LedgerEntry
	err := r.v.read(ctx, func(st *state) error {
		e, ok := st.ledger[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *ledgerRepo) FindByStatus(ctx context.Context, status models.EntryStatus) ([]*models.LedgerEntry, error) {
	out, err := r.filter(ctx, func(e *models.LedgerEntry) bool { return e.Status == status })
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ledgerRepo) FindAll(ctx context.Context, filter models.LedgerFilter, limit, offset int) ([]*models.LedgerEntry, int64, error) {
	all, err := r.filter(ctx, func(e *models.LedgerEntry) bool {
		if filter.CustomerID != nil && e.CustomerID != *filter.CustomerID {
			return false
		}
		return filter.Status == "" || e.Status == filter.Status
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *ledgerRepo) MarkTerminal(ctx context.Context, id string, status models.EntryStatus, reason string, at time.Time) (bool, error) {
	var moved bool
	err := r.v.write(ctx, func(st *state) error {
		e, ok := st.ledger[id]
		if !ok || e.Status != models.EntryPending {
			return nil
		}
		e.Status = status
		e.FailureReason = reason
		e.SettledAt = &at
		e.UpdatedAt = time.Now()
		st.ledger[id] = e
		moved = true
		return nil
	})
	return moved, err
}

func (r *ledgerRepo) SumTransferred(ctx context.Context, customerID uint, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.read(ctx, func(st *state) error {
		for _, e := range st.ledger {
			if e.CustomerID != customerID || e.Kind != models.KindTransfer || e.Status != models.EntryCompleted {
				continue
			}
			if e.Date.Before(from) || e.Date.After(to) {
				continue
			}
			total = total.Add(e.Amount)
		}
		return nil
	})
	return total, err
}

func (r *ledgerRepo) filter(ctx context.Context, keep func(*models.LedgerEntry) bool) ([]*models.LedgerEntry, error) {
	var out []*models.LedgerEntry
	err := r.v.read(ctx, func(st *state) error {
		for _, e := range st.ledger {
			e := e
			if keep(&e) {
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

type userRepo struct{ v *view }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.users[user.Username]; ok {
			return repositories.ErrDuplicate
		}
		user.ID = st.nextUserID
		st.nextUserID++
		now := time.Now()
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.Username] = *user
		return nil
	})
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var out *models.User
	err := r.v.read(ctx, func(st *state) error {
		u, ok := st.users[username]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.users[user.Username]; !ok {
			return repositories.ErrNotFound
		}
		user.UpdatedAt = time.Now()
		st.users[user.Username] = *user
		return nil
	})
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	var all []*models.User
	err := r.v.read(ctx, func(st *state) error {
		for _, u := range st.users {
			u := u
			all = append(all, &u)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, limit, offset), int64(len(all)), nil
}
