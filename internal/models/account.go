package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContainerStatus is the lifecycle status shared by accounts and cards.
type ContainerStatus string

const (
	StatusNew     ContainerStatus = "NEW"
	StatusActive  ContainerStatus = "ACTIVE"
	StatusExpired ContainerStatus = "EXPIRED"
)

// Lifetimes applied at creation and activation.
const (
	AccountLifetimeYears = 10
	CardLifetimeYears    = 5
)

// Account is a 20-digit numbered container holding a balance.
type Account struct {
	Number     string          `gorm:"primaryKey;size:20" json:"account_number"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	Balance    decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	Status     ContainerStatus `gorm:"size:16;not null;index" json:"status"`
	OpenedAt   time.Time       `gorm:"not null" json:"opened_at"`
	ExpiresAt  time.Time       `gorm:"not null;index" json:"expires_at"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`
}

func (a *Account) IsActive() bool { return a.Status == StatusActive }

// Card is a 16-digit numbered container that draws on its parent account's balance.
type Card struct {
	Number        string          `gorm:"primaryKey;size:16" json:"card_number"`
	AccountNumber string          `gorm:"size:20;not null;index" json:"account_number"`
	Status        ContainerStatus `gorm:"size:16;not null;index" json:"status"`
	IssuedAt      time.Time       `gorm:"not null" json:"issued_at"`
	ExpiresAt     time.Time       `gorm:"not null;index" json:"expires_at"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
}

func (c *Card) IsActive() bool { return c.Status == StatusActive }
