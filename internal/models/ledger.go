package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryStatus string

const (
	EntryPending   EntryStatus = "PENDING"
	EntryCompleted EntryStatus = "COMPLETED"
	EntryFailed    EntryStatus = "FAILED"
)

// Terminal reports whether no further transition is allowed.
func (s EntryStatus) Terminal() bool {
	return s == EntryCompleted || s == EntryFailed
}

type EntryKind string

const (
	KindTransfer EntryKind = "TRANSFER"
	KindDeposit  EntryKind = "DEPOSIT"
)

// Pseudo-sources recorded on deposit entries.
const (
	SourceAccountDeposit = "ACCOUNT_DEPOSIT"
	SourceCardDeposit    = "CARD_DEPOSIT"
)

// LedgerEntry is the immutable record of an attempted movement.
type LedgerEntry struct {
	ID            string          `gorm:"primaryKey;size:20"`
	CustomerID    uint            `gorm:"not null;index"`
	Source        string          `gorm:"size:20;not null;index"`
	Destination   string          `gorm:"size:20;not null;index"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Date          time.Time       `gorm:"not null;index"`
	Status        EntryStatus     `gorm:"size:16;not null;index"`
	Kind          EntryKind       `gorm:"size:16;not null"`
	FailureReason string          `gorm:"size:255"`
	SettledAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LedgerEntryView is the outward shape of a ledger entry.
type LedgerEntryView struct {
	TransactionID   string          `json:"transaction_id"`
	CustomerID      uint            `json:"customer_id"`
	Debit           string          `json:"debit"`
	Credit          string          `json:"credit"`
	TransactionDate time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	Status          EntryStatus     `json:"status"`
	Kind            EntryKind       `json:"kind"`
	FailureReason   string          `json:"failure_reason,omitempty"`
}

func (e *LedgerEntry) View() LedgerEntryView {
	return LedgerEntryView{
		TransactionID:   e.ID,
		CustomerID:      e.CustomerID,
		Debit:           e.Source,
		Credit:          e.Destination,
		TransactionDate: e.Date,
		Amount:          e.Amount,
		Status:          e.Status,
		Kind:            e.Kind,
		FailureReason:   e.FailureReason,
	}
}

// LedgerFilter narrows ledger listings. A nil CustomerID lists everything.
type LedgerFilter struct {
	CustomerID *uint
	Status     EntryStatus
}
