package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest moves Amount from Source to Destination. The amount is
// checked by the transfer validator so that a zero amount gets its own code.
type TransferRequest struct {
	Source      string          `json:"source" validate:"required"`
	Destination string          `json:"destination" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type CustomerCreateRequest struct {
	FirstName string    `json:"first_name" validate:"required,max=64"`
	LastName  string    `json:"last_name" validate:"required,max=64"`
	BirthDate time.Time `json:"birth_date" validate:"past"`
	FIN       string    `json:"fin" validate:"required,len=7,alphanum"`
	Phone     string    `json:"phone" validate:"required,e164"`
	Email     string    `json:"email" validate:"required,email"`
}

type AccountCreateRequest struct {
	CustomerID uint `json:"customer_id" validate:"required"`
}

type CardCreateRequest struct {
	AccountNumber string `json:"account_number" validate:"required,len=20,numeric"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"positive_decimal"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserCreateRequest registers a login. CustomerID is required for customer
// logins and ignored for administrators.
type UserCreateRequest struct {
	Username   string `json:"username" validate:"required,min=4,max=50"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	CustomerID uint   `json:"customer_id"`
}

type UserStatusRequest struct {
	Username string `json:"username" validate:"required"`
}

type PasswordChangeRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
