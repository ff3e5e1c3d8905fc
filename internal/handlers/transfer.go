package handlers

import (
	"bankcore/internal/models"
	"bankcore/internal/services/transfer"
	"bankcore/internal/utils/response"
	"bankcore/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TransferHandler exposes the account and card transfer endpoint.
type TransferHandler struct {
	service transfer.Service
	log     *zap.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service, log *zap.Logger) *TransferHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransferHandler{service: s, log: log.Named("transfer_handler")}
}

// Transfer handles POST /transactions/transfer. Customers may only move money
// out of their own containers; the ownership lookup runs after the checks
// that need no store access.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var req models.TransferRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.service.Precheck(req.Source, req.Destination, req.Amount); err != nil {
		return fail(c, err)
	}
	if err := requireOwner(c, h.service, req.Source); err != nil {
		return fail(c, err)
	}

	entry, err := h.service.Transfer(c.UserContext(), req.Source, req.Destination, req.Amount)
	if err != nil {
		h.log.Debug("transfer rejected",
			zap.String("source", req.Source),
			zap.String("destination", req.Destination),
			zap.Error(err))
		return fail(c, err)
	}
	if entry.Status == models.EntryPending {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "transfer accepted for settlement",
			"data":    entry,
		})
	}
	return response.Success(c, "transfer completed", entry)
}
