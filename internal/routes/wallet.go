package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/miniwallet/internal/wallet"
)

// WalletMiddleware groups the handlers guarding wallet endpoints.
type WalletMiddleware struct {
	Auth        fiber.Handler
	Idempotency fiber.Handler
	InitLimit   fiber.Handler
}

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, mw WalletMiddleware) {
	r.Post("/init", mw.InitLimit, h.Create)

	w := r.Group("/wallet", mw.Auth)
	w.Get("", h.Show)
	w.Post("", h.Enable)
	w.Patch("", h.Disable)
	w.Get("/transactions", h.Transactions)
	w.Post("/deposits", mw.Idempotency, h.Deposit)
	w.Post("/withdrawals", mw.Idempotency, h.Withdraw)
	w.Post("/withdrawal", mw.Idempotency, h.Withdraw)
}
