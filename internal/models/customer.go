package models

import "time"

// RiskStatus is the owner-level risk marker maintained by settlement.
type RiskStatus string

const (
	RiskRegular   RiskStatus = "REGULAR"
	RiskSuspected RiskStatus = "SUSPECTED"
)

// Customer owns accounts, and through them, cards.
type Customer struct {
	ID           uint       `gorm:"primarykey" json:"customer_id"`
	FirstName    string     `gorm:"not null" json:"first_name"`
	LastName     string     `gorm:"not null" json:"last_name"`
	BirthDate    time.Time  `json:"birth_date"`
	FIN          string     `gorm:"uniqueIndex;size:7;not null" json:"fin"`
	Phone        string     `gorm:"uniqueIndex;not null" json:"phone"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	RiskStatus   RiskStatus `gorm:"size:16;not null;default:'REGULAR'" json:"risk_status"`
	RegisteredAt time.Time  `json:"registered_at"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

func (c *Customer) IsSuspected() bool { return c.RiskStatus == RiskSuspected }
