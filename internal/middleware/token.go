package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/miniwallet/internal/wallet"
)

// Authenticator resolves a wallet credential.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (wallet.Wallet, error)
}

var tokenSchemes = []string{"Token ", "Bearer "}

// TokenAuth authenticates requests carrying "Authorization: Token <credential>"
// and stores the wallet id in c.Locals(wallet.LocalsWalletID).
func TokenAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		credential, ok := parseAuthorization(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, "Token")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"status": "fail",
				"data":   fiber.Map{"token": "Authentication credentials were not provided."},
			})
		}

		w, err := auth.Authenticate(c.UserContext(), credential)
		if errors.Is(err, wallet.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"status": "fail",
				"data":   fiber.Map{"token": "Invalid token"},
			})
		}
		if err != nil {
			return err
		}

		c.Locals(wallet.LocalsWalletID, w.ID)
		return c.Next()
	}
}

func parseAuthorization(header string) (string, bool) {
	header = strings.TrimSpace(header)
	for _, scheme := range tokenSchemes {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			credential := strings.TrimSpace(header[len(scheme):])
			return credential, credential != ""
		}
	}
	return "", false
}
