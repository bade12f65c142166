package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/portalestiba/notifier/internal/pkg/billing"
	"gorm.io/gorm"
)

const premiumTimeout = 10 * time.Second

// PremiumController exposes read-only premium status per chapa.
type PremiumController struct {
	svc *billing.Service
}

// NewPremiumController creates a premium controller from an injected service.
func NewPremiumController(svc *billing.Service) *PremiumController {
	return &PremiumController{svc: svc}
}

// HandleGetPremiumStatus returns the entitlement row for a chapa, 404 when the
// worker never had a subscription.
func (pc *PremiumController) HandleGetPremiumStatus(c *fiber.Ctx) error {
	chapa := c.Params("chapa")

	ctx, cancel := context.WithTimeout(context.Background(), premiumTimeout)
	defer cancel()

	ent, err := pc.svc.GetEntitlement(ctx, chapa)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No premium record for this chapa"})
		}
		log.Printf("billing: premium status lookup failed for chapa %s: %v", chapa, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Premium status lookup failed"})
	}

	return c.Status(fiber.StatusOK).JSON(ent)
}
