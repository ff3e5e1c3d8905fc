package handlers

import (
	"bankcore/internal/models"
	"bankcore/internal/services/auth"
	"bankcore/internal/utils/response"
	"bankcore/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler exchanges credentials for a bearer token.
type AuthHandler struct {
	service auth.Service
	log     *zap.Logger
}

func NewAuthHandler(s auth.Service, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{service: s, log: log.Named("auth_handler")}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.log.Debug("login rejected", zap.String("username", req.Username), zap.Error(err))
		return fail(c, err)
	}
	return response.Success(c, "login successful", result)
}
