package handlers

import (
	"context"
	"errors"
	"strconv"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/utils"
	"bankcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

var (
	errForbidden    = errors.New("forbidden")
	errUnauthorized = errors.New("unauthorized")
)

// OwnerResolver reports which customer owns an account or card.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, identifier string) (uint, error)
}

func claimsOf(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return nil, errUnauthorized
	}
	return claims, nil
}

// requireOwner passes admins and the customer owning identifier.
func requireOwner(c *fiber.Ctx, owners OwnerResolver, identifier string) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	if claims.IsAdmin() {
		return nil
	}
	owner, err := owners.OwnerOf(c.UserContext(), identifier)
	if err != nil {
		return err
	}
	if owner != claims.CustomerID {
		return errForbidden
	}
	return nil
}

// requireCustomer passes admins and the customer themself.
func requireCustomer(c *fiber.Ctx, customerID uint) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	if !claims.IsAdmin() && claims.CustomerID != customerID {
		return errForbidden
	}
	return nil
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errForbidden):
		return response.Forbidden(c)
	case errors.Is(err, errUnauthorized):
		return response.Unauthorized(c, "invalid claims")
	}
	return response.FromError(c, err)
}

func parseCustomerID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("customerId"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidRequest.Withf("customerId must be a positive integer")
	}
	return uint(id), nil
}
