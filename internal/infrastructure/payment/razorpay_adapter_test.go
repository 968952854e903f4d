package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentdomain "github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
)

const (
	testKeyID         = "rzp_test_key"
	testKeySecret     = "rzp_test_secret"
	testWebhookSecret = "whsec_test"
)

func newTestAdapter(t *testing.T, baseURL string) *RazorpayAdapter {
	t.Helper()
	a, err := NewRazorpayAdapter(&RazorpayConfig{
		KeyID:         testKeyID,
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
		BaseURL:       baseURL,
	})
	require.NoError(t, err)
	return a
}

const capturedPayload = `{
  "entity": "event",
  "account_id": "acc_1",
  "event": "payment.captured",
  "contains": ["payment"],
  "payload": {
    "payment": {
      "entity": {
        "id": "pay_29QQoUBi66xm2f",
        "entity": "payment",
        "amount": 129950,
        "currency": "INR",
        "status": "captured",
        "order_id": "order_9A33XWu170gUtm",
        "method": "upi",
        "email": "asha@example.com",
        "notes": [],
        "created_at": 1700000000
      }
    }
  },
  "created_at": 1700000005
}`

func TestRazorpayConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  RazorpayConfig
		wantErr error
	}{
		{"valid", RazorpayConfig{KeyID: "k", KeySecret: "s"}, nil},
		{"missing key id", RazorpayConfig{KeySecret: "s"}, ErrRazorpayMissingKeyID},
		{"missing secret", RazorpayConfig{KeyID: "k"}, ErrRazorpayMissingKeySecret},
		{"bad base url", RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: "ftp://x"}, ErrRazorpayInvalidBaseURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRazorpayAdapter_CreateOrder(t *testing.T) {
	var got razorpayOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, testKeyID, user)
		assert.Equal(t, testKeySecret, pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":129950,"currency":"INR","receipt":"ORD-1","status":"created"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	order, err := a.CreateOrder(context.Background(), paymentdomain.CreateOrderRequest{
		Amount:  shared.NewMoney(decimal.RequireFromString("1299.50"), "INR"),
		Receipt: "ORD-1",
		Notes:   map[string]string{"user_id": "u1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(129950), order.Amount)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(129950), got.Amount)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "u1", got.Notes["user_id"])
}

func TestRazorpayAdapter_CreateOrder_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	_, err := a.CreateOrder(context.Background(), paymentdomain.CreateOrderRequest{
		Amount: shared.NewMoney(decimal.NewFromInt(1), "INR"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, paymentdomain.ErrGatewayRequestFailed)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestRazorpayAdapter_FetchOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path != "/orders/order_abc" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":39800,"currency":"INR","status":"paid"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	order, err := a.FetchOrder(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, int64(39800), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "paid", order.Status)

	_, err = a.FetchOrder(context.Background(), "order_missing")
	assert.ErrorIs(t, err, paymentdomain.ErrGatewayRequestFailed)

	_, err = a.FetchOrder(context.Background(), "")
	assert.Error(t, err)
}

func TestRazorpayAdapter_CreateOrder_RejectsZeroAmount(t *testing.T) {
	a := newTestAdapter(t, "http://127.0.0.1:1")
	_, err := a.CreateOrder(context.Background(), paymentdomain.CreateOrderRequest{
		Amount: shared.NewMoney(decimal.Zero, "INR"),
	})
	assert.Error(t, err)
}

func TestRazorpayAdapter_VerifyCheckout(t *testing.T) {
	a := newTestAdapter(t, "")
	sig := SignWebhook(testKeySecret, []byte("order_abc|pay_xyz"))

	assert.NoError(t, a.VerifyCheckout("order_abc", "pay_xyz", sig))
	assert.ErrorIs(t, a.VerifyCheckout("order_abc", "pay_other", sig), paymentdomain.ErrInvalidSignature)
	assert.ErrorIs(t, a.VerifyCheckout("order_abc", "pay_xyz", "zz-not-hex"), paymentdomain.ErrInvalidSignature)
	assert.ErrorIs(t, a.VerifyCheckout("", "pay_xyz", sig), paymentdomain.ErrInvalidSignature)
}

func TestRazorpayAdapter_ParseWebhook(t *testing.T) {
	a := newTestAdapter(t, "")
	payload := []byte(capturedPayload)

	t.Run("valid signature decodes payment", func(t *testing.T) {
		event, err := a.ParseWebhook(payload, SignWebhook(testWebhookSecret, payload))
		require.NoError(t, err)

		assert.Equal(t, paymentdomain.EventPaymentCaptured, event.Type)
		require.NotNil(t, event.Payment)
		assert.Equal(t, "pay_29QQoUBi66xm2f", event.Payment.ID)
		assert.Equal(t, "order_9A33XWu170gUtm", event.Payment.GatewayOrderID)
		assert.True(t, event.Payment.Amount.Amount.Equal(decimal.RequireFromString("1299.50")))
		assert.Equal(t, "INR", event.Payment.Amount.Currency)
		assert.Equal(t, "upi", event.Payment.Method)
		assert.Nil(t, event.Payment.Notes)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.Payment.CreatedAt)
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := a.ParseWebhook(payload, "")
		assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := SignWebhook(testWebhookSecret, payload)
		tampered := append([]byte{}, payload...)
		tampered[len(tampered)-2] = '9'
		_, err := a.ParseWebhook(tampered, sig)
		assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("signed with a different secret", func(t *testing.T) {
		_, err := a.ParseWebhook(payload, SignWebhook("other", payload))
		assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("malformed json with valid signature", func(t *testing.T) {
		bad := []byte(`{"event":`)
		_, err := a.ParseWebhook(bad, SignWebhook(testWebhookSecret, bad))
		assert.ErrorIs(t, err, paymentdomain.ErrMalformedPayload)
	})

	t.Run("object notes", func(t *testing.T) {
		body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","amount":100,"currency":"INR","status":"failed","notes":{"order_id":"ORD-1","n":5}}}}}`)
		event, err := a.ParseWebhook(body, SignWebhook(testWebhookSecret, body))
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", event.Payment.Notes["order_id"])
		assert.Equal(t, "5", event.Payment.Notes["n"])
	})
}

func TestRazorpayAdapter_ParseWebhook_NoSecretConfigured(t *testing.T) {
	a, err := NewRazorpayAdapter(&RazorpayConfig{KeyID: "k", KeySecret: "s"})
	require.NoError(t, err)

	payload := []byte(capturedPayload)
	_, err = a.ParseWebhook(payload, SignWebhook("", payload))
	assert.ErrorIs(t, err, paymentdomain.ErrGatewayNotConfigured)
}
