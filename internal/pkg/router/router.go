package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/portalestiba/notifier/app/controllers"
	"github.com/portalestiba/notifier/internal/pkg/constants"
	"github.com/portalestiba/notifier/internal/pkg/env"
	"github.com/portalestiba/notifier/internal/pkg/middleware"
)

// Deps carries the constructed controllers into route installation.
type Deps struct {
	Push         *controllers.PushController
	Webhook      *controllers.WebhookController
	Checkout     *controllers.CheckoutController
	Premium      *controllers.PremiumController
	NotifyAPIKey string
}

// InstallRouter registers all HTTP routes. Browser-facing routes share a
// redis-backed rate limiter; the webhook route is exempt so provider
// redeliveries are never throttled away.
func InstallRouter(app *fiber.App, deps Deps) {
	api := app.Group(constants.APIRoute)

	limited := limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	})

	api.Post(constants.PushSubscribeRoute, limited, deps.Push.HandleSubscribe)
	api.Post(constants.PushUnsubscribeRoute, limited, deps.Push.HandleUnsubscribe)
	api.Post(constants.PushNotifyRoute, limited, middleware.NotifyAPIKeyMiddleware(deps.NotifyAPIKey), deps.Push.HandleNotify)

	api.Post(constants.BillingWebhookRoute, deps.Webhook.HandleStripeWebhook)
	api.Post(constants.BillingCheckoutRoute, limited, deps.Checkout.HandleCreateCheckoutSession)

	api.Get(constants.PremiumStatusRoute, limited, deps.Premium.HandleGetPremiumStatus)
}

// Limiter state lives in its own Redis database, next to the premium cache
// in DB 0.
const defaultLimiterDatabase = 1

// newLimiterStorage backs the rate limiter with the shared cache server so
// limits hold across replicas.
func newLimiterStorage() fiber.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redis.New(redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: limiterDatabase(),
	})
}

// limiterDatabase reads CACHE_LIMITER_DB, falling back to the default on an
// unset or unparsable value.
func limiterDatabase() int {
	db, err := strconv.Atoi(env.GetEnv("CACHE_LIMITER_DB", strconv.Itoa(defaultLimiterDatabase)))
	if err != nil {
		return defaultLimiterDatabase
	}
	return db
}
