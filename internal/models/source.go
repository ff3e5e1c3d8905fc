package models

import (
	"regexp"

	"github.com/shopspring/decimal"
)

type ContainerKind string

const (
	ContainerAccount ContainerKind = "ACCOUNT"
	ContainerCard    ContainerKind = "CARD"
)

// ContainerMode selects which container kinds an instance accepts for transfers.
type ContainerMode string

const (
	ContainerModeAccount ContainerMode = "account"
	ContainerModeCard    ContainerMode = "card"
	ContainerModeAny     ContainerMode = "any"
)

func (m ContainerMode) Allows(k ContainerKind) bool {
	switch m {
	case ContainerModeAccount:
		return k == ContainerAccount
	case ContainerModeCard:
		return k == ContainerCard
	default:
		return true
	}
}

var (
	accountNumberRe = regexp.MustCompile(`^\d{20}$`)
	cardNumberRe    = regexp.MustCompile(`^\d{16}$`)
)

// ParseContainerKind infers the container kind from the identifier format.
func ParseContainerKind(id string) (ContainerKind, bool) {
	switch {
	case accountNumberRe.MatchString(id):
		return ContainerAccount, true
	case cardNumberRe.MatchString(id):
		return ContainerCard, true
	}
	return "", false
}

// TransferSource is a container that can take part in a transfer.
type TransferSource interface {
	Identifier() string
	Kind() ContainerKind
	// Status is the effective status: a card is only as active as its account.
	Status() ContainerStatus
	Balance() decimal.Decimal
	SetBalance(decimal.Decimal)
	// HolderNumber is the account number that actually holds the balance.
	HolderNumber() string
	Holder() *Account
	CustomerID() uint
}

type AccountRef struct {
	Account *Account
}

func (r AccountRef) Identifier() string { return r.Account.Number }
func (r AccountRef) Kind() ContainerKind { return ContainerAccount }
func (r AccountRef) Status() ContainerStatus { return r.Account.Status }
func (r AccountRef) Balance() decimal.Decimal { return r.Account.Balance }
func (r AccountRef) SetBalance(b decimal.Decimal) { r.Account.Balance = b }
func (r AccountRef) HolderNumber() string { return r.Account.Number }
func (r AccountRef) Holder() *Account { return r.Account }
func (r AccountRef) CustomerID() uint { return r.Account.CustomerID }

type CardRef struct {
	Card    *Card
	Account *Account
}

func (r CardRef) Identifier() string { return r.Card.Number }
func (r CardRef) Kind() ContainerKind { return ContainerCard }

func (r CardRef) Status() ContainerStatus {
	if r.Card.Status != StatusActive {
		return r.Card.Status
	}
	return r.Account.Status
}

func (r CardRef) Balance() decimal.Decimal { return r.Account.Balance }
func (r CardRef) SetBalance(b decimal.Decimal) { r.Account.Balance = b }
func (r CardRef) HolderNumber() string { return r.Account.Number }
func (r CardRef) Holder() *Account { return r.Account }
func (r CardRef) CustomerID() uint { return r.Account.CustomerID }
