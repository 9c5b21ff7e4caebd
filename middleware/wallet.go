// middleware/wallet.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// WalletContextMiddleware extracts the connected wallet address set by
// the wallet provider in front of this service. The address is
// optional — pets without a wallet live in the default namespace, so
// nothing is rejected here.
func WalletContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallet := strings.TrimSpace(c.Get("X-Wallet-Address"))
		// Addresses are case-insensitive hex; normalize so storage keys
		// and battle histories agree.
		c.Locals("wallet_id", strings.ToLower(wallet))
		return c.Next()
	}
}

// WalletID reads the normalized wallet from the request context.
// Empty string means no wallet connected.
func WalletID(c *fiber.Ctx) string {
	if w, ok := c.Locals("wallet_id").(string); ok {
		return w
	}
	return ""
}
