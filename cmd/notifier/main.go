package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/portalestiba/notifier/app/controllers"
	"github.com/portalestiba/notifier/app/repository"
	"github.com/portalestiba/notifier/internal/pkg/billing"
	"github.com/portalestiba/notifier/internal/pkg/cache"
	"github.com/portalestiba/notifier/internal/pkg/constants"
	"github.com/portalestiba/notifier/internal/pkg/database"
	"github.com/portalestiba/notifier/internal/pkg/env"
	"github.com/portalestiba/notifier/internal/pkg/metrics/counter"
	"github.com/portalestiba/notifier/internal/pkg/push"
	"github.com/portalestiba/notifier/internal/pkg/router"
)

func main() {
	app := newApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "5000")))
	log.Fatal(err)
}

func newApplication() *fiber.App {
	env.SetupEnvFile()

	db, err := database.Setup()
	if err != nil {
		log.Fatalf("database setup failed: %v", err)
	}

	redisClient := cache.NewClient()
	premiumCache := cache.NewPremiumCache(redisClient)

	endpointRepo := repository.NewEndpointRepository(db)
	billingSvc := billing.NewServiceFromDB(db, premiumCache)
	stripeClient := billing.NewStripeClientFromEnv()

	transport, err := push.NewWebPushTransportFromEnv()
	if err != nil {
		log.Fatalf("web push setup failed: %v", err)
	}
	engine := push.NewEngineWithStats(endpointRepo, transport, counter.NewDeliveryCounter(redisClient))

	app := fiber.New(fiber.Config{
		AppName: "portalestiba-notifier",
	})
	app.Use(recover.New(), logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: env.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,X-API-Key,Authorization",
	}))
	app.Get(constants.MetricsRoute, monitor.New())

	router.InstallRouter(app, router.Deps{
		Push:         controllers.NewPushController(endpointRepo, engine),
		Webhook:      controllers.NewWebhookController(billingSvc, env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		Checkout:     controllers.NewCheckoutController(stripeClient),
		Premium:      controllers.NewPremiumController(billingSvc),
		NotifyAPIKey: env.GetEnv("NOTIFY_API_KEY", ""),
	})

	return app
}
