package handlers

import (
	"bankcore/internal/services/transfer"
	"bankcore/internal/utils/pagination"
	"bankcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler lists ledger entries.
type TransactionHandler struct {
	service transfer.Service
}

func NewTransactionHandler(s transfer.Service) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// ByCustomer handles GET /transactions/admin/byCustomer/:customerId.
func (h *TransactionHandler) ByCustomer(c *fiber.Ctx) error {
	customerID, err := parseCustomerID(c)
	if err != nil {
		return fail(c, err)
	}

	page, size := pagination.ParseFromRequest(c)
	result, err := h.service.ListTransactions(c.UserContext(), &customerID, page, size)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "transactions retrieved", result)
}

// All handles GET /transactions/admin/all.
func (h *TransactionHandler) All(c *fiber.Ctx) error {
	page, size := pagination.ParseFromRequest(c)
	result, err := h.service.ListTransactions(c.UserContext(), nil, page, size)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "transactions retrieved", result)
}
