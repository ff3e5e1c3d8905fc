package models

import "github.com/shopspring/decimal"

const (
	DefaultMaxAccountsPerOwner  = 5
	DefaultMaxCardsPerAccount   = 3
	DefaultMonthlyTransferLimit = 50000
)

// LimitPolicy is read once at start-up and passed by value.
type LimitPolicy struct {
	MaxAccountsPerOwner  int
	MaxCardsPerAccount   int
	MinAcceptableBalance decimal.Decimal
	MonthlyTransferLimit decimal.Decimal
}

// DefaultLimitPolicy returns the limits used when nothing is configured.
func DefaultLimitPolicy() LimitPolicy {
	return LimitPolicy{
		MaxAccountsPerOwner:  DefaultMaxAccountsPerOwner,
		MaxCardsPerAccount:   DefaultMaxCardsPerAccount,
		MinAcceptableBalance: decimal.Zero,
		MonthlyTransferLimit: decimal.NewFromInt(DefaultMonthlyTransferLimit),
	}
}
