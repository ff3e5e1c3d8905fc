package handlers

import (
	"bankcore/internal/models"
	"bankcore/internal/services/account"
	"bankcore/internal/utils/pagination"
	"bankcore/internal/utils/response"
	"bankcore/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	service account.Service
	owners  OwnerResolver
}

func NewAccountHandler(s account.Service, owners OwnerResolver) *AccountHandler {
	return &AccountHandler{service: s, owners: owners}
}

// Create handles POST /accounts. A customer always opens the account for
// themself; only admins choose the owner.
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return fail(c, err)
	}

	var req models.AccountCreateRequest
	if !claims.IsAdmin() {
		req.CustomerID = claims.CustomerID
	} else if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}

	created, err := h.service.Create(c.UserContext(), req.CustomerID)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, "account created", created)
}

// Get handles GET /accounts/:number.
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	number := c.Params("number")
	if err := requireOwner(c, h.owners, number); err != nil {
		return fail(c, err)
	}
	found, err := h.service.Get(c.UserContext(), number)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "account retrieved", found)
}

// Activate handles PUT /accounts/:number/activate.
func (h *AccountHandler) Activate(c *fiber.Ctx) error {
	number := c.Params("number")
	if err := requireOwner(c, h.owners, number); err != nil {
		return fail(c, err)
	}
	activated, err := h.service.Activate(c.UserContext(), number)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "account activated", activated)
}

// Deposit handles POST /accounts/:number/deposit.
func (h *AccountHandler) Deposit(c *fiber.Ctx) error {
	number := c.Params("number")
	var req models.DepositRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requireOwner(c, h.owners, number); err != nil {
		return fail(c, err)
	}
	result, err := h.service.Deposit(c.UserContext(), number, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "deposit completed", result)
}

// ListByCustomer handles GET /accounts/customer/:customerId.
func (h *AccountHandler) ListByCustomer(c *fiber.Ctx) error {
	customerID, err := parseCustomerID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := requireCustomer(c, customerID); err != nil {
		return fail(c, err)
	}
	page, size := pagination.ParseFromRequest(c)
	result, err := h.service.ListByCustomer(c.UserContext(), customerID, page, size)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "accounts retrieved", result)
}
