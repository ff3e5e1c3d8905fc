package transfer

import (
	"context"
	"errors"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"

	"github.com/shopspring/decimal"
)

// Validator runs the pre-mutation checks for a transfer. It only reads.
type Validator struct {
	cfg Config
}

func NewValidator(cfg Config) *Validator {
	if cfg.ContainerMode == "" {
		cfg.ContainerMode = models.ContainerModeAny
	}
	return &Validator{cfg: cfg}
}

// Validate checks, in order: amount, identifier shape, existence, status,
// funds, the minimum-balance floor and finally self-transfer. The first
// failing check is returned. Amount and identifier checks never touch store.
func (v *Validator) Validate(ctx context.Context, store repositories.Store, sourceID, destID string, amount decimal.Decimal) (*ValidatedTransfer, error) {
	if err := CheckAmount(amount); err != nil {
		return nil, err
	}
	kind, err := v.CheckIdentifiers(sourceID, destID)
	if err != nil {
		return nil, err
	}

	src, err := Resolve(ctx, store, sourceID, kind)
	if err != nil {
		return nil, err
	}
	dst, err := Resolve(ctx, store, destID, kind)
	if err != nil {
		return nil, err
	}

	if err := CheckActive(src, dst); err != nil {
		return nil, err
	}
	if v.cfg.BlockSuspectedOwners {
		if err := checkOwnerNotSuspected(ctx, store, src.CustomerID()); err != nil {
			return nil, err
		}
	}
	if err := CheckFunds(src.Balance(), amount, v.cfg.Limits); err != nil {
		return nil, err
	}
	if sourceID == destID {
		return nil, apperrors.ErrSameContainer
	}
	if !v.cfg.AllowSelfTransfer && src.HolderNumber() == dst.HolderNumber() {
		return nil, apperrors.ErrSelfTransfer
	}

	return &ValidatedTransfer{Source: src, Destination: dst, Amount: amount}, nil
}

// CheckIdentifiers returns the common container kind of both identifiers.
func (v *Validator) CheckIdentifiers(sourceID, destID string) (models.ContainerKind, error) {
	srcKind, ok := models.ParseContainerKind(sourceID)
	if !ok {
		return "", apperrors.ErrInvalidIdentifier.Withf("invalid source identifier %q", sourceID)
	}
	dstKind, ok := models.ParseContainerKind(destID)
	if !ok {
		return "", apperrors.ErrInvalidIdentifier.Withf("invalid destination identifier %q", destID)
	}
	if srcKind != dstKind {
		return "", apperrors.ErrMixedContainerKinds
	}
	if !v.cfg.ContainerMode.Allows(srcKind) {
		return "", apperrors.ErrContainerKindNotAllowed.Withf("%s transfers are disabled", srcKind)
	}
	return srcKind, nil
}

func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	return nil
}

func CheckActive(src, dst models.TransferSource) error {
	if s := src.Status(); s != models.StatusActive {
		return apperrors.ErrContainerNotActive.Withf("source %s is %s", src.Identifier(), s)
	}
	if s := dst.Status(); s != models.StatusActive {
		return apperrors.ErrContainerNotActive.Withf("destination %s is %s", dst.Identifier(), s)
	}
	return nil
}

// CheckFunds requires balance >= amount and balance - amount >= the floor.
func CheckFunds(balance, amount decimal.Decimal, limits models.LimitPolicy) error {
	if balance.LessThan(amount) {
		return apperrors.ErrInsufficientFunds
	}
	if balance.Sub(amount).LessThan(limits.MinAcceptableBalance) {
		return apperrors.ErrBalanceFloor
	}
	return nil
}

// Resolve loads the container behind id. Cards are resolved together with the
// account holding their balance.
func Resolve(ctx context.Context, store repositories.Store, id string, kind models.ContainerKind) (models.TransferSource, error) {
	switch kind {
	case models.ContainerAccount:
		acc, err := store.Accounts().GetByNumber(ctx, id)
		if err != nil {
			return nil, lookupError(err, id)
		}
		return models.AccountRef{Account: acc}, nil
	case models.ContainerCard:
		card, err := store.Cards().GetByNumber(ctx, id)
		if err != nil {
			return nil, lookupError(err, id)
		}
		acc, err := store.Accounts().GetByNumber(ctx, card.AccountNumber)
		if err != nil {
			return nil, lookupError(err, card.AccountNumber)
		}
		return models.CardRef{Card: card, Account: acc}, nil
	}
	return nil, apperrors.ErrInvalidIdentifier
}

func lookupError(err error, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrContainerNotFound.Withf("container %s not found", id)
	}
	return apperrors.Internal(err)
}

func checkOwnerNotSuspected(ctx context.Context, store repositories.Store, customerID uint) error {
	c, err := store.Customers().GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrOwnerNotFound
		}
		return apperrors.Internal(err)
	}
	if c.IsSuspected() {
		return apperrors.ErrOwnerSuspected
	}
	return nil
}
