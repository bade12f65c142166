package controllers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/portalestiba/notifier/app/models"
	"github.com/portalestiba/notifier/app/repository"
	"github.com/portalestiba/notifier/internal/pkg/push"
)

const notifyTimeout = 30 * time.Second

// SubscribeRequest is the browser subscription object plus the optional chapa
// of the logged-in worker.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys" validate:"required"`
	UserChapa string `json:"user_chapa"`
}

// UnsubscribeRequest identifies the endpoint to remove.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

// NotifyRequest triggers one fan-out. All payload fields are optional; an
// empty chapa_target broadcasts to every subscriber.
type NotifyRequest struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	ChapaTarget string `json:"chapa_target"`
}

// PushController handles endpoint registration and notification fan-out.
type PushController struct {
	registry repository.EndpointRepository
	engine   *push.Engine
	validate *validator.Validate
}

// NewPushController creates a push controller from injected dependencies.
func NewPushController(registry repository.EndpointRepository, engine *push.Engine) *PushController {
	return &PushController{
		registry: registry,
		engine:   engine,
		validate: validator.New(),
	}
}

// HandleSubscribe upserts a push endpoint. Re-subscribing refreshes the key
// material in place.
func (pc *PushController) HandleSubscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription format: body must be JSON."})
	}
	if err := pc.validate.Struct(&req); err != nil {
		log.Printf("push: invalid subscription request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription format: missing or invalid required fields."})
	}

	ep := &models.PushEndpoint{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
		Chapa:    req.UserChapa,
	}
	if err := pc.registry.Upsert(ep); err != nil {
		log.Printf("push: failed to save subscription: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save subscription in database."})
	}

	log.Printf("push: subscription registered for %s (chapa: %s)", req.Endpoint, orNone(req.UserChapa))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Subscription saved and persisted."})
}

// HandleUnsubscribe deletes a push endpoint. Deleting an unknown endpoint
// still succeeds.
func (pc *PushController) HandleUnsubscribe(c *fiber.Ctx) error {
	var req UnsubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Endpoint is required for unsubscription."})
	}
	if err := pc.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Endpoint is required for unsubscription."})
	}

	if err := pc.registry.DeleteByEndpoint(req.Endpoint); err != nil {
		log.Printf("push: failed to remove subscription: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove subscription from database."})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Subscription removed and unpersisted."})
}

// HandleNotify fans a notification out to all matching endpoints and waits
// for every delivery attempt to settle before responding.
func (pc *PushController) HandleNotify(c *fiber.Ctx) error {
	var req NotifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notify request: body must be JSON."})
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	// Trimmed once here so the filter decision and the engine agree on what
	// counts as a targeted request.
	chapaTarget := strings.TrimSpace(req.ChapaTarget)

	result, err := pc.engine.Notify(ctx, push.Request{
		Title: req.Title,
		Body:  req.Body,
		URL:   req.URL,
		Chapa: chapaTarget,
	})
	if err != nil {
		log.Printf("push: failed to resolve subscriptions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve subscriptions."})
	}

	if chapaTarget != "" && result.Targeted == 0 {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": fmt.Sprintf("No active subscriptions found for chapa_target: %s.", chapaTarget),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Notifications process completed.",
		"targeted":  result.Targeted,
		"delivered": result.Delivered(),
	})
}

func orNone(chapa string) string {
	if chapa == "" {
		return "none"
	}
	return chapa
}
