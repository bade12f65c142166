package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestStripeServer(t *testing.T, status int, response string, capture *url.Values) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("missing bearer authorization")
		}
		if r.Header.Get("Idempotency-Key") == "" {
			t.Errorf("missing idempotency key")
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if capture != nil {
			*capture = r.PostForm
		}
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
}

func testStripeClient(baseURL string) *StripeClient {
	return &StripeClient{
		SecretKey:      "sk_test_123",
		DefaultPriceID: "price_default",
		AppBaseURL:     "https://portalestibavlc.com",
		APIBaseURL:     baseURL,
		HTTPClient:     http.DefaultClient,
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	srv := newTestStripeServer(t, http.StatusOK, `{"id":"cs_test_123"}`, &form)
	defer srv.Close()

	client := testStripeClient(srv.URL)
	sessionID, err := client.CreateCheckoutSession(context.Background(), "1042", "")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if sessionID != "cs_test_123" {
		t.Fatalf("expected session id cs_test_123, got %q", sessionID)
	}

	if form.Get("mode") != "subscription" {
		t.Errorf("expected subscription mode, got %q", form.Get("mode"))
	}
	if form.Get("line_items[0][price]") != "price_default" {
		t.Errorf("expected default price fallback, got %q", form.Get("line_items[0][price]"))
	}
	if form.Get("client_reference_id") != "1042" || form.Get("metadata[chapa]") != "1042" {
		t.Errorf("expected chapa correlation in both fields, got %v", form)
	}
	if !strings.Contains(form.Get("success_url"), "{CHECKOUT_SESSION_ID}") {
		t.Errorf("success_url must carry the session placeholder, got %q", form.Get("success_url"))
	}
}

func TestCreateCheckoutSessionExplicitPrice(t *testing.T) {
	var form url.Values
	srv := newTestStripeServer(t, http.StatusOK, `{"id":"cs_test_456"}`, &form)
	defer srv.Close()

	client := testStripeClient(srv.URL)
	if _, err := client.CreateCheckoutSession(context.Background(), "1042", "price_special"); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if form.Get("line_items[0][price]") != "price_special" {
		t.Errorf("explicit price must win over the default, got %q", form.Get("line_items[0][price]"))
	}
}

func TestCreateCheckoutSessionErrors(t *testing.T) {
	srv := newTestStripeServer(t, http.StatusPaymentRequired, `{"error":{"message":"card declined"}}`, nil)
	defer srv.Close()

	client := testStripeClient(srv.URL)
	if _, err := client.CreateCheckoutSession(context.Background(), "1042", ""); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}

	if _, err := client.CreateCheckoutSession(context.Background(), "   ", ""); err == nil {
		t.Fatalf("expected error on empty chapa")
	}

	client.SecretKey = ""
	if _, err := client.CreateCheckoutSession(context.Background(), "1042", ""); err == nil {
		t.Fatalf("expected error on missing secret key")
	}

	client = testStripeClient(srv.URL)
	client.DefaultPriceID = ""
	if _, err := client.CreateCheckoutSession(context.Background(), "1042", ""); err == nil {
		t.Fatalf("expected error when no price id is available")
	}
}
