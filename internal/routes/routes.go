// Package routes defines the API routing configuration.
// It mounts every handler under /api/v1 and applies the bearer-token and
// admin middleware.
package routes

import (
	"bankcore/internal/handlers"
	"bankcore/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Health      *handlers.HealthHandler
	Transfer    *handlers.TransferHandler
	Transaction *handlers.TransactionHandler
	Customer    *handlers.CustomerHandler
	Account     *handlers.AccountHandler
	Card        *handlers.CardHandler
	Settlement  *handlers.SettlementHandler
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers, auth *middleware.AuthMiddleware) {
	api := app.Group("/api/v1")

	// Public endpoints (no auth required)
	api.Get("/health", h.Health.Health)
	api.Post("/auth/login", h.Auth.Login)

	protected := api.Group("", auth.Handler)
	admin := middleware.AdminOnly

	setupTransactionRoutes(protected, h, admin)
	setupCustomerRoutes(protected, h.Customer, admin)
	setupAccountRoutes(protected, h.Account)
	setupCardRoutes(protected, h.Card)
	setupUserRoutes(protected, h.User, admin)

	protected.Get("/admin/settlement/last", admin, h.Settlement.Last)
}

func setupTransactionRoutes(router fiber.Router, h Handlers, admin fiber.Handler) {
	transactions := router.Group("/transactions")
	transactions.Post("/transfer", h.Transfer.Transfer)
	transactions.Get("/admin/byCustomer/:customerId", admin, h.Transaction.ByCustomer)
	transactions.Get("/admin/all", admin, h.Transaction.All)
}

func setupCustomerRoutes(router fiber.Router, h *handlers.CustomerHandler, admin fiber.Handler) {
	customers := router.Group("/customers")
	customers.Post("/", admin, h.Create)
	customers.Get("/", admin, h.List)
	customers.Get("/:id", h.Get)
}

func setupAccountRoutes(router fiber.Router, h *handlers.AccountHandler) {
	accounts := router.Group("/accounts")
	accounts.Post("/", h.Create)
	accounts.Get("/customer/:customerId", h.ListByCustomer)
	accounts.Get("/:number", h.Get)
	accounts.Put("/:number/activate", h.Activate)
	accounts.Post("/:number/deposit", h.Deposit)
}

func setupCardRoutes(router fiber.Router, h *handlers.CardHandler) {
	cards := router.Group("/cards")
	cards.Post("/", h.Create)
	cards.Get("/account/:number", h.ListByAccount)
	cards.Put("/:number/activate", h.Activate)
	cards.Post("/:number/deposit", h.Deposit)
}

func setupUserRoutes(router fiber.Router, h *handlers.UserHandler, admin fiber.Handler) {
	users := router.Group("/users")
	users.Get("/", admin, h.List)
	users.Post("/generic", admin, h.CreateCustomerUser)
	users.Post("/admin", admin, h.CreateAdmin)
	users.Patch("/activate", admin, h.Activate)
	users.Patch("/disable", admin, h.Disable)
	users.Patch("/change-password", h.ChangePassword)
}
