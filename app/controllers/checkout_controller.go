package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/portalestiba/notifier/internal/pkg/billing"
)

const checkoutTimeout = 20 * time.Second

// CheckoutRequest opens a subscription checkout for one worker.
type CheckoutRequest struct {
	Chapa   string `json:"chapa"`
	PriceID string `json:"priceId"`
}

// CheckoutController creates billing checkout sessions.
type CheckoutController struct {
	stripe *billing.StripeClient
}

// NewCheckoutController creates a checkout controller from an injected client.
func NewCheckoutController(stripe *billing.StripeClient) *CheckoutController {
	return &CheckoutController{stripe: stripe}
}

// HandleCreateCheckoutSession performs the single outbound billing call and
// returns the session ID for the frontend to redirect to.
func (cc *CheckoutController) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid checkout request: body must be JSON."})
	}
	if strings.TrimSpace(req.Chapa) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Chapa es requerida"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkoutTimeout)
	defer cancel()

	sessionID, err := cc.stripe.CreateCheckoutSession(ctx, req.Chapa, req.PriceID)
	if err != nil {
		log.Printf("billing: checkout session creation failed for chapa %s: %v", req.Chapa, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	log.Printf("billing: checkout session %s created for chapa %s", sessionID, req.Chapa)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"sessionId": sessionID})
}
