package response

import (
	apperrors "bankcore/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *fiber.Ctx) error {
	return Error(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions")
}

// FromError writes err with the status matching its Kind. Only the message
// is sent; the wrapped cause stays in the logs.
func FromError(c *fiber.Ctx, err error) error {
	derr := apperrors.AsDomain(err)
	return Error(c, StatusFor(derr.Kind), derr.Code, derr.Message)
}

func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindState:
		return fiber.StatusConflict
	case apperrors.KindInsufficientFunds, apperrors.KindLimitExceeded:
		return fiber.StatusUnprocessableEntity
	case apperrors.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperrors.KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}
