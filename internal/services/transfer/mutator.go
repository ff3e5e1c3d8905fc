package transfer

import (
	"context"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"

	"github.com/shopspring/decimal"
)

// Mutator applies balance changes. Every method must be called with the
// transactional Store handed out by ExecuteInTransaction, so that the debit
// and the credit share one commit.
type Mutator struct {
	limits models.LimitPolicy
}

func NewMutator(limits models.LimitPolicy) *Mutator {
	return &Mutator{limits: limits}
}

// Apply locks both balance holders in canonical order, re-checks the transfer
// against the locked rows and then debits the source and credits the
// destination.
func (m *Mutator) Apply(ctx context.Context, tx repositories.Store, t *ValidatedTransfer) error {
	srcHolder, dstHolder := t.Source.HolderNumber(), t.Destination.HolderNumber()

	locked, err := tx.LockAccounts(ctx, srcHolder, dstHolder)
	if err != nil {
		return lookupError(err, srcHolder+"/"+dstHolder)
	}
	src := rebind(t.Source, locked[srcHolder])
	dst := rebind(t.Destination, locked[dstHolder])

	if err := CheckActive(src, dst); err != nil {
		return err
	}
	if err := CheckFunds(src.Balance(), t.Amount, m.limits); err != nil {
		return err
	}

	if srcHolder == dstHolder {
		// Two cards on one account, allowed by AllowSelfTransfer: the entry is
		// recorded but the shared balance is unchanged.
		t.Source, t.Destination = src, dst
		return nil
	}

	src.SetBalance(src.Balance().Sub(t.Amount))
	dst.SetBalance(dst.Balance().Add(t.Amount))
	if src.Balance().IsNegative() {
		return apperrors.ErrInsufficientFunds
	}

	if err := tx.Accounts().Update(ctx, src.Holder()); err != nil {
		return apperrors.Internal(err)
	}
	if err := tx.Accounts().Update(ctx, dst.Holder()); err != nil {
		return apperrors.Internal(err)
	}

	t.Source, t.Destination = src, dst
	return nil
}

// Credit adds amount to a single ACTIVE account under lock.
func (m *Mutator) Credit(ctx context.Context, tx repositories.Store, accountNumber string, amount decimal.Decimal) (*models.Account, error) {
	if err := CheckAmount(amount); err != nil {
		return nil, err
	}
	locked, err := tx.LockAccounts(ctx, accountNumber)
	if err != nil {
		return nil, lookupError(err, accountNumber)
	}
	acc := locked[accountNumber]
	if !acc.IsActive() {
		return nil, apperrors.ErrContainerNotActive.Withf("account %s is %s", acc.Number, acc.Status)
	}
	acc.Balance = acc.Balance.Add(amount)
	if err := tx.Accounts().Update(ctx, acc); err != nil {
		return nil, apperrors.Internal(err)
	}
	return acc, nil
}

// rebind points src at a freshly locked copy of its balance holder.
func rebind(src models.TransferSource, holder *models.Account) models.TransferSource {
	if c, ok := src.(models.CardRef); ok {
		return models.CardRef{Card: c.Card, Account: holder}
	}
	return models.AccountRef{Account: holder}
}
