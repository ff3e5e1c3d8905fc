package handlers

import (
	"bankcore/internal/models"
	"bankcore/internal/services/card"
	"bankcore/internal/utils/pagination"
	"bankcore/internal/utils/response"
	"bankcore/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type CardHandler struct {
	service card.Service
	owners  OwnerResolver
}

func NewCardHandler(s card.Service, owners OwnerResolver) *CardHandler {
	return &CardHandler{service: s, owners: owners}
}

// Create handles POST /cards, issuing a card on an account the caller owns.
func (h *CardHandler) Create(c *fiber.Ctx) error {
	var req models.CardCreateRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requireOwner(c, h.owners, req.AccountNumber); err != nil {
		return fail(c, err)
	}
	created, err := h.service.Create(c.UserContext(), req.AccountNumber)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, "card created", created)
}

// Activate handles PUT /cards/:number/activate.
func (h *CardHandler) Activate(c *fiber.Ctx) error {
	number := c.Params("number")
	if err := requireOwner(c, h.owners, number); err != nil {
		return fail(c, err)
	}
	activated, err := h.service.Activate(c.UserContext(), number)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "card activated", activated)
}

// Deposit handles POST /cards/:number/deposit.
func (h *CardHandler) Deposit(c *fiber.Ctx) error {
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

// ListByAccount handles GET /cards/account/:number.
func (h *CardHandler) ListByAccount(c *fiber.Ctx) error {
	number := c.Params("number")
	if err := requireOwner(c, h.owners, number); err != nil {
		return fail(c, err)
	}
	page, size := pagination.ParseFromRequest(c)
	result, err := h.service.ListByAccount(c.UserContext(), number, page, size)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "cards retrieved", result)
}
