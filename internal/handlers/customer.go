package handlers

import (
	"strconv"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/services/customer"
	"bankcore/internal/utils/pagination"
	"bankcore/internal/utils/response"
	"bankcore/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	service customer.Service
}

func NewCustomerHandler(s customer.Service) *CustomerHandler {
	return &CustomerHandler{service: s}
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req models.CustomerCreateRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	created, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, "customer created", created)
}

// Get handles GET /customers/:id. Customers can read only their own profile.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, apperrors.ErrInvalidRequest.Withf("id must be a positive integer"))
	}
	if err := requireCustomer(c, uint(id)); err != nil {
		return fail(c, err)
	}
	found, err := h.service.Get(c.UserContext(), uint(id))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "customer retrieved", found)
}

// List handles GET /customers.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	page, size := pagination.ParseFromRequest(c)
	result, err := h.service.List(c.UserContext(), page, size)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "customers retrieved", result)
}
