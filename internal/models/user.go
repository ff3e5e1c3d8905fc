package models

import "time"

// UserStatus gates login. Disabled users keep their record but cannot sign in.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserDisabled UserStatus = "DISABLED"
)

// User is a login principal. Customers sign in as RoleUser bound to their
// CustomerID; administrators carry RoleAdmin and no customer.
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string     `gorm:"size:72;not null" json:"-"`
	Role         string     `gorm:"size:16;not null" json:"role"`
	CustomerID   uint       `gorm:"index" json:"customer_id,omitempty"`
	Status       UserStatus `gorm:"size:16;not null;default:'ACTIVE'" json:"status"`
	RegisteredAt time.Time  `json:"registered_at"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

func (u *User) IsActive() bool { return u.Status == UserActive }
