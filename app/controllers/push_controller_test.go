package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/portalestiba/notifier/app/models"
	"github.com/portalestiba/notifier/internal/pkg/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRegistry struct {
	endpoints map[string]models.PushEndpoint
	failList  bool
	upserts   int
	deletes   int
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{endpoints: make(map[string]models.PushEndpoint)}
}

func (r *memoryRegistry) Upsert(ep *models.PushEndpoint) error {
	r.upserts++
	r.endpoints[ep.Endpoint] = *ep
	return nil
}

func (r *memoryRegistry) DeleteByEndpoint(endpoint string) error {
	r.deletes++
	delete(r.endpoints, endpoint)
	return nil
}

func (r *memoryRegistry) ListAll() ([]models.PushEndpoint, error) {
	if r.failList {
		return nil, errors.New("db down")
	}
	var out []models.PushEndpoint
	for _, ep := range r.endpoints {
		out = append(out, ep)
	}
	return out, nil
}

func (r *memoryRegistry) ListByChapa(chapa string) ([]models.PushEndpoint, error) {
	if r.failList {
		return nil, errors.New("db down")
	}
	var out []models.PushEndpoint
	for _, ep := range r.endpoints {
		if ep.Chapa == chapa {
			out = append(out, ep)
		}
	}
	return out, nil
}

type okTransport struct{ attempts int }

func (t *okTransport) Send(ctx context.Context, ep models.PushEndpoint, payload []byte) error {
	t.attempts++
	return nil
}

func newPushApp(registry *memoryRegistry, transport push.Transport) *fiber.App {
	app := fiber.New()
	pc := NewPushController(registry, push.NewEngine(registry, transport))
	app.Post("/api/push/subscribe", pc.HandleSubscribe)
	app.Post("/api/push/unsubscribe", pc.HandleUnsubscribe)
	app.Post("/api/push/notify", pc.HandleNotify)
	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleSubscribe(t *testing.T) {
	registry := newMemoryRegistry()
	app := newPushApp(registry, &okTransport{})

	body := map[string]any{
		"endpoint":   "https://push.example/abc",
		"keys":       map[string]string{"p256dh": "pk", "auth": "ak"},
		"user_chapa": "1042",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/push/subscribe", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	saved, ok := registry.endpoints["https://push.example/abc"]
	require.True(t, ok)
	assert.Equal(t, "1042", saved.Chapa)
	assert.Equal(t, "pk", saved.P256dh)

	// Re-subscribing the same endpoint refreshes it in place.
	body["keys"] = map[string]string{"p256dh": "pk2", "auth": "ak2"}
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/push/subscribe", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Len(t, registry.endpoints, 1)
	assert.Equal(t, "pk2", registry.endpoints["https://push.example/abc"].P256dh)
}

func TestHandleSubscribeValidation(t *testing.T) {
	registry := newMemoryRegistry()
	app := newPushApp(registry, &okTransport{})

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing endpoint", map[string]any{"keys": map[string]string{"p256dh": "pk", "auth": "ak"}}},
		{"endpoint not a url", map[string]any{"endpoint": "not-a-url", "keys": map[string]string{"p256dh": "pk", "auth": "ak"}}},
		{"missing p256dh", map[string]any{"endpoint": "https://push.example/abc", "keys": map[string]string{"auth": "ak"}}},
		{"missing auth", map[string]any{"endpoint": "https://push.example/abc", "keys": map[string]string{"p256dh": "pk"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/push/subscribe", tt.body))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Zero(t, registry.upserts)
}

func TestHandleUnsubscribeIsIdempotent(t *testing.T) {
	registry := newMemoryRegistry()
	registry.endpoints["https://push.example/abc"] = models.PushEndpoint{Endpoint: "https://push.example/abc"}
	app := newPushApp(registry, &okTransport{})

	body := map[string]any{"endpoint": "https://push.example/abc"}
	for i := 0; i < 2; i++ {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/push/unsubscribe", body))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.Empty(t, registry.endpoints)
}

func TestHandleNotify(t *testing.T) {
	registry := newMemoryRegistry()
	registry.endpoints["https://push.example/a"] = models.PushEndpoint{Endpoint: "https://push.example/a", Chapa: "1042"}
	registry.endpoints["https://push.example/b"] = models.PushEndpoint{Endpoint: "https://push.example/b", Chapa: "2001"}
	transport := &okTransport{}
	app := newPushApp(registry, transport)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/push/notify", map[string]any{"chapa_target": "1042"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, float64(1), out["targeted"])
	assert.Equal(t, float64(1), out["delivered"])
	assert.Equal(t, 1, transport.attempts)
}

// A whitespace-only chapa_target is an empty filter, so the request broadcasts
// and reports the regular summary instead of a per-chapa miss.
func TestHandleNotifyWhitespaceChapaBroadcasts(t *testing.T) {
	registry := newMemoryRegistry()
	registry.endpoints["https://push.example/a"] = models.PushEndpoint{Endpoint: "https://push.example/a", Chapa: "1042"}
	registry.endpoints["https://push.example/b"] = models.PushEndpoint{Endpoint: "https://push.example/b", Chapa: "2001"}
	transport := &okTransport{}
	app := newPushApp(registry, transport)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/push/notify", map[string]any{"chapa_target": "   "}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, float64(2), out["targeted"])
	assert.Equal(t, 2, transport.attempts)

	// Same request against an empty registry reports the broadcast summary,
	// not a miss for a blank chapa.
	app = newPushApp(newMemoryRegistry(), &okTransport{})
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/push/notify", map[string]any{"chapa_target": "   "}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out = decodeBody(t, resp)
	assert.Equal(t, float64(0), out["targeted"])
}

func TestHandleNotifyNoRecipientsForChapa(t *testing.T) {
	registry := newMemoryRegistry()
	app := newPushApp(registry, &okTransport{})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/push/notify", map[string]any{"chapa_target": "9999"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Contains(t, out["message"], "9999")
	assert.NotContains(t, out, "targeted")
}

func TestHandleNotifyRegistryFailure(t *testing.T) {
	registry := newMemoryRegistry()
	registry.failList = true
	app := newPushApp(registry, &okTransport{})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/push/notify", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
