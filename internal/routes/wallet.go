package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/wallet"
)

// RegisterWalletRoutes wires the device wallet endpoint. Only the address
// ever leaves this surface; key material stays in the store.
func RegisterWalletRoutes(r fiber.Router, ks *wallet.Keystore) {
	r.Get("/wallet", func(c *fiber.Ctx) error {
		rec, isNew, err := ks.GetOrCreate(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not provision device wallet")
		}
		if rec.Address == "" {
			// No persistent local store on this platform.
			return c.Status(http.StatusOK).JSON(fiber.Map{"address": nil, "isNew": false})
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"address": rec.Address, "isNew": isNew})
	})
}
