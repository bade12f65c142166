package billing

import "errors"

// Sentinel errors for the failure modes callers need to distinguish.
var (
	// ErrSignatureInvalid means the webhook body/signature pair did not match
	// the configured secret. Nothing may be processed after it.
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrMissingCorrelation means an otherwise valid subscription event had no
	// chapa in its metadata, so it cannot be applied to any entitlement row.
	ErrMissingCorrelation = errors.New("no chapa in subscription metadata")
)

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	StripeEventID  string
	EventType      string
	PayloadJSON    string
	SignatureValid bool
}
