package constants

// Static route constants
const (
	APIRoute = "/api"

	PushSubscribeRoute   = "/push/subscribe"
	PushUnsubscribeRoute = "/push/unsubscribe"
	PushNotifyRoute      = "/push/notify"

	BillingWebhookRoute  = "/billing/webhook"
	BillingCheckoutRoute = "/billing/checkout-session"

	PremiumStatusRoute = "/premium/:chapa"

	MetricsRoute = "/metrics"
)
