package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/portalestiba/notifier/app/models"
	"github.com/portalestiba/notifier/internal/pkg/env"
)

const (
	defaultSendTimeout = 10 * time.Second
	notificationTTL    = 86400 // seconds; one day is plenty for a hiring notice
)

// WebPushTransport delivers payloads over the Web Push protocol using VAPID
// authentication.
type WebPushTransport struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string

	httpClient *http.Client
}

// NewWebPushTransportFromEnv builds the transport from VAPID configuration.
func NewWebPushTransportFromEnv() (*WebPushTransport, error) {
	publicKey := strings.TrimSpace(env.GetEnv("VAPID_PUBLIC_KEY", ""))
	privateKey := strings.TrimSpace(env.GetEnv("VAPID_PRIVATE_KEY", ""))
	email := strings.TrimSpace(env.GetEnv("WEB_PUSH_EMAIL", ""))
	if publicKey == "" || privateKey == "" || email == "" {
		return nil, errors.New("web push requires VAPID_PUBLIC_KEY, VAPID_PRIVATE_KEY and WEB_PUSH_EMAIL")
	}

	return &WebPushTransport{
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
		subscriber:      "mailto:" + email,
		httpClient: &http.Client{
			Timeout: defaultSendTimeout,
		},
	}, nil
}

// Send pushes one payload to one endpoint. A 404 or 410 from the push service
// means the subscription is dead and is reported as ErrEndpointGone; any other
// failure (including the per-attempt timeout) is transient.
func (t *WebPushTransport) Send(ctx context.Context, ep models.PushEndpoint, payload []byte) error {
	sub := &webpush.Subscription{
		Endpoint: ep.Endpoint,
		Keys: webpush.Keys{
			P256dh: ep.P256dh,
			Auth:   ep.Auth,
		},
	}
	options := &webpush.Options{
		HTTPClient:      t.httpClient,
		Subscriber:      t.subscriber,
		VAPIDPublicKey:  t.vapidPublicKey,
		VAPIDPrivateKey: t.vapidPrivateKey,
		TTL:             notificationTTL,
		Urgency:         webpush.UrgencyNormal,
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, options)
	if err != nil {
		return fmt.Errorf("web push send failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("push service returned %d: %w", resp.StatusCode, ErrEndpointGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service rejected delivery with status %d", resp.StatusCode)
	}
	return nil
}
