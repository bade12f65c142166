package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(apiKey string) *fiber.App {
	app := fiber.New()
	app.Post("/notify", NotifyAPIKeyMiddleware(apiKey), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestNotifyAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		value      string
		wantStatus int
	}{
		{"valid x-api-key", "secret-key", "X-API-Key", "secret-key", fiber.StatusOK},
		{"valid bearer token", "secret-key", "Authorization", "Bearer secret-key", fiber.StatusOK},
		{"wrong key", "secret-key", "X-API-Key", "other-key", fiber.StatusUnauthorized},
		{"missing key", "secret-key", "", "", fiber.StatusUnauthorized},
		{"empty header value", "secret-key", "X-API-Key", "   ", fiber.StatusUnauthorized},
		{"unconfigured key", "", "X-API-Key", "anything", fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tt.configured)
			req := httptest.NewRequest(http.MethodPost, "/notify", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
