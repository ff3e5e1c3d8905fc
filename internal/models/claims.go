package models

import "github.com/golang-jwt/jwt/v5"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type UserClaims struct {
	jwt.RegisteredClaims
	CustomerID uint   `json:"customer_id"`
	Role       string `json:"role"`
}

func (c *UserClaims) IsAdmin() bool { return c.Role == RoleAdmin }
