package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portalestiba/notifier/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com"

// StripeClient performs the single outbound billing call this service needs:
// creating a subscription checkout session. Everything else billing-related
// arrives via webhooks.
type StripeClient struct {
	SecretKey      string
	DefaultPriceID string
	AppBaseURL     string

	APIBaseURL string
	HTTPClient *http.Client
}

// NewStripeClientFromEnv builds a client from STRIPE_* configuration.
func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		SecretKey:      strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		DefaultPriceID: strings.TrimSpace(env.GetEnv("STRIPE_PRICE_ID_MENSUAL", "")),
		AppBaseURL:     strings.TrimRight(env.GetEnv("APP_BASE_URL", "https://portalestibavlc.com"), "/"),
		APIBaseURL:     strings.TrimSpace(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckoutSession opens a subscription checkout for a chapa and returns
// the session ID. The chapa rides along as metadata and client_reference_id so
// the webhook events can be correlated back to the worker.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, chapa, priceID string) (string, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return "", errors.New("STRIPE_SECRET_KEY is not configured")
	}
	chapa = strings.TrimSpace(chapa)
	if chapa == "" {
		return "", errors.New("chapa is required")
	}
	price := strings.TrimSpace(priceID)
	if price == "" {
		price = c.DefaultPriceID
	}
	if price == "" {
		return "", errors.New("no price id given and STRIPE_PRICE_ID_MENSUAL is not configured")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", price)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", c.AppBaseURL+"/?success=true&session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", c.AppBaseURL+"/?canceled=true")
	form.Set("client_reference_id", chapa)
	form.Set("metadata[chapa]", chapa)

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("checkout session creation failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", errors.New("checkout session response has no id")
	}
	return out.ID, nil
}
