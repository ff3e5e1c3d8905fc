package handlers

import (
	"bankcore/internal/models"
	"bankcore/internal/services/auth"
	"bankcore/internal/utils/pagination"
	"bankcore/internal/utils/response"
	"bankcore/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler manages login principals. Everything except ChangePassword is
// admin only; ChangePassword is proven by the old password.
type UserHandler struct {
	service auth.Service
}

func NewUserHandler(s auth.Service) *UserHandler {
	return &UserHandler{service: s}
}

// CreateCustomerUser handles POST /users/generic.
func (h *UserHandler) CreateCustomerUser(c *fiber.Ctx) error {
	return h.create(c, models.RoleUser)
}

// CreateAdmin handles POST /users/admin.
func (h *UserHandler) CreateAdmin(c *fiber.Ctx) error {
	return h.create(c, models.RoleAdmin)
}

func (h *UserHandler) create(c *fiber.Ctx, role string) error {
	var req models.UserCreateRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.service.CreateUser(c.UserContext(), req, role)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, "user created", user)
}

// Activate handles PATCH /users/activate.
func (h *UserHandler) Activate(c *fiber.Ctx) error {
	var req models.UserStatusRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.service.Activate(c.UserContext(), req.Username)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "user activated", user)
}

// Disable handles PATCH /users/disable.
func (h *UserHandler) Disable(c *fiber.Ctx) error {
	var req models.UserStatusRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.service.Disable(c.UserContext(), req.Username)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "user disabled", user)
}

// ChangePassword handles PATCH /users/change-password.
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req models.PasswordChangeRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.service.ChangePassword(c.UserContext(), req); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "password changed", nil)
}

// List handles GET /users.
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, size := pagination.ParseFromRequest(c)
	result, err := h.service.List(c.UserContext(), page, size)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "users retrieved", result)
}
