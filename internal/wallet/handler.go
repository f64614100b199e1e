package wallet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/miniwallet/internal/ledger"
)

// LocalsWalletID is the fiber.Ctx locals key holding the authenticated
// wallet identifier.
const LocalsWalletID = "wallet_id"

const defaultHistoryLimit = 100

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service      *Service
	historyLimit int
}

// NewHandler builds a wallet HTTP handler. historyLimit caps the number of
// entries one history request may return.
func NewHandler(service *Service, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Handler{service: service, historyLimit: historyLimit}
}

// field accepts both JSON strings and bare JSON values, as well as form
// values, and keeps the raw text for validation.
type field string

func (f *field) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = field(s)
		return nil
	}
	*f = field(b)
	return nil
}

func (f *field) UnmarshalText(b []byte) error {
	*f = field(b)
	return nil
}

type createRequest struct {
	CustomerXID field `json:"customer_xid" form:"customer_xid"`
}

type transactionRequest struct {
	Amount      field `json:"amount" form:"amount"`
	ReferenceID field `json:"reference_id" form:"reference_id"`
}

type historyItem struct {
	ledger.Receipt
	Direction ledger.Direction `json:"direction"`
}

// Create provisions a wallet for the customer and returns its token.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := bindBody(c, &req); err != nil {
		return h.respondError(c, err)
	}
	created, err := h.service.Create(c.UserContext(), CreateInput{OwnerID: string(req.CustomerXID)})
	if err != nil {
		return h.respondError(c, err)
	}
	return success(c, http.StatusCreated, fiber.Map{"token": created.Credential})
}

// Show returns the authenticated wallet.
func (h *Handler) Show(c *fiber.Ctx) error {
	view, err := h.service.Get(c.UserContext(), walletID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return success(c, http.StatusOK, fiber.Map{"wallet": view})
}

// Enable turns the authenticated wallet on.
func (h *Handler) Enable(c *fiber.Ctx) error {
	view, err := h.service.Enable(c.UserContext(), walletID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return success(c, http.StatusCreated, fiber.Map{"wallet": view})
}

// Disable turns the authenticated wallet off.
func (h *Handler) Disable(c *fiber.Ctx) error {
	view, err := h.service.Disable(c.UserContext(), walletID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return success(c, http.StatusOK, fiber.Map{"wallet": view})
}

// Deposit adds money to the authenticated wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	in, err := parseTransaction(c)
	if err != nil {
		return h.respondError(c, err)
	}
	entry, err := h.service.Deposit(c.UserContext(), walletID(c), in)
	if err != nil {
		return h.respondError(c, err)
	}
	return success(c, http.StatusCreated, fiber.Map{"deposit": entry.Receipt()})
}

// Withdraw takes money out of the authenticated wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	in, err := parseTransaction(c)
	if err != nil {
		return h.respondError(c, err)
	}
	entry, err := h.service.Withdraw(c.UserContext(), walletID(c), in)
	if err != nil {
		return h.respondError(c, err)
	}
	return success(c, http.StatusCreated, fiber.Map{"withdrawal": entry.Receipt()})
}

// Transactions lists the authenticated wallet's most recent entries.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.historyLimit)
	if limit <= 0 || limit > h.historyLimit {
		limit = h.historyLimit
	}
	entries, err := h.service.Transactions(c.UserContext(), walletID(c), limit)
	if err != nil {
		return h.respondError(c, err)
	}
	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItem{Receipt: e.Receipt(), Direction: e.Direction})
	}
	return success(c, http.StatusOK, fiber.Map{"transactions": items})
}

func parseTransaction(c *fiber.Ctx) (TransactionInput, error) {
	var req transactionRequest
	if err := bindBody(c, &req); err != nil {
		return TransactionInput{}, err
	}
	return ParseTransactionInput(string(req.Amount), string(req.ReferenceID))
}

// bindBody parses JSON or form bodies. An empty body leaves out untouched so
// required-field checks report what is missing.
func bindBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		verr := &ValidationError{}
		verr.add("body", "Malformed request body.")
		return verr
	}
	return nil
}

func walletID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsWalletID).(string)
	return id
}

func success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "data": data})
}

func fail(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"status": "fail", "data": data})
}

func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, ErrNotFound):
		return fail(c, http.StatusNotFound, fiber.Map{"wallet": "Wallet not found"})
	case errors.Is(err, ErrConflict):
		return fail(c, http.StatusConflict, fiber.Map{"customer_xid": "Customer id exists"})
	case errors.Is(err, ErrAlreadyEnabled):
		return fail(c, http.StatusConflict, fiber.Map{"wallet": "Already enabled"})
	case errors.Is(err, ErrWalletDisabled):
		return fail(c, http.StatusForbidden, fiber.Map{"wallet": "Wallet is disabled"})
	case errors.Is(err, ErrInsufficientBalance):
		return fail(c, http.StatusUnprocessableEntity, fiber.Map{"wallet": "Insufficient balance"})
	case errors.Is(err, ErrUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, "wallet store temporarily unavailable, retry the request")
	default:
		return err
	}
}
