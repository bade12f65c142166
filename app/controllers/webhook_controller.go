package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/portalestiba/notifier/internal/pkg/billing"
)

const webhookTimeout = 15 * time.Second

// WebhookController receives the billing provider's signed event stream.
type WebhookController struct {
	svc           *billing.Service
	webhookSecret string
}

// NewWebhookController creates a webhook controller from injected dependencies.
func NewWebhookController(svc *billing.Service, webhookSecret string) *WebhookController {
	return &WebhookController{svc: svc, webhookSecret: webhookSecret}
}

// HandleStripeWebhook verifies, records, and dispatches one webhook delivery.
// Verification runs against the exact raw body bytes before anything else
// touches the payload; nothing is persisted for an invalid signature.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	if !billing.VerifyStripeWebhookSignature(rawBody, signature, wc.webhookSecret, billing.DefaultSignatureTolerance) {
		log.Print("billing: webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Webhook signature verification failed"})
	}

	ev, err := billing.ParseEvent(rawBody)
	if err != nil {
		log.Printf("billing: webhook payload rejected: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	created, stored, err := wc.svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		StripeEventID:  ev.ID,
		EventType:      ev.Type,
		PayloadJSON:    string(rawBody),
		SignatureValid: true,
	})
	if err != nil {
		log.Printf("billing: failed to persist webhook event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record webhook event"})
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		// Redelivery of an event we already applied; acknowledge it. A row
		// whose processing failed does not count: the provider retries exactly
		// so that attempt can be re-applied.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "event": ev.Type, "duplicate": true})
	}

	procErr := wc.svc.ProcessEvent(ctx, ev)
	if markErr := wc.svc.MarkWebhookProcessed(ctx, stored.ID, procErr); markErr != nil {
		log.Printf("billing: failed to mark webhook event processed: %v", markErr)
	}
	if procErr != nil {
		log.Printf("billing: webhook event %s failed: %v", ev.ID, procErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Event processing failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "event": ev.Type})
}
