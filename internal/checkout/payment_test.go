package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/httpclient"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/logger"
)

func newTestPaymentClient(t *testing.T, handler http.HandlerFunc) *PaymentClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	doer := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 10,
	})
	return NewPaymentClient(doer, srv.URL, logger.Discard())
}

func testSummary(t *testing.T) Summary {
	t.Helper()
	s, err := Summarize(domain.Lines{line(1, 45000, 2, true), line(7, 9950, 1, true), line(9, 100, 1, false)})
	require.NoError(t, err)
	return s
}

func TestPaymentClient_Initiate(t *testing.T) {
	var got map[string]any
	c := newTestPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment/initiate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"key":"k1","txnid":"TXN1179ab12cd","amount":1179.5,"productinfo":"Order for 2 items",
			"firstname":"Asha Rao","email":"asha@example.in","phone":"000",
			"surl":"http://api/payment/callback","furl":"http://api/payment/callback",
			"hash":"h","action":"https://test.payu.in/_payment"}`))
	})

	s := testSummary(t)
	redirect, err := c.Initiate(context.Background(), s, validAddress())
	require.NoError(t, err)

	// 900 + 99.50 = 999.50 subtotal, GST round(179.91) = 180.
	assert.Equal(t, 1179.5, got["amount"])
	assert.Equal(t, "Asha Rao", got["firstname"])
	assert.Equal(t, "Order for 2 items", got["productinfo"])
	assert.Equal(t, "9876543210", got["phone"])
	assert.Equal(t, "411001", got["pincode"])
	assert.Equal(t, "12 MG Road", got["address_line"])
	assert.Equal(t, []any{
		map[string]any{"product_id": float64(1), "quantity": float64(2)},
		map[string]any{"product_id": float64(7), "quantity": float64(1)},
	}, got["items"])

	assert.Equal(t, "https://test.payu.in/_payment", redirect.Action)
	assert.Equal(t, "TXN1179ab12cd", redirect.TxnID)
	assert.Equal(t, "1179.5", redirect.Params["amount"])
	assert.Equal(t, "9876543210", redirect.Params["phone"])
	assert.Equal(t, "h", redirect.Params["hash"])
	assert.Len(t, redirect.Params, 10)
}

func TestPaymentClient_Initiate_InsufficientStock(t *testing.T) {
	c := newTestPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Insufficient stock for Arduino Uno R3. Only 1 left."}`))
	})

	_, err := c.Initiate(context.Background(), testSummary(t), validAddress())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Only 1 left")
}

func TestPaymentClient_Initiate_IncompleteResponse(t *testing.T) {
	c := newTestPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key":"k1"}`))
	})

	_, err := c.Initiate(context.Background(), testSummary(t), validAddress())
	assert.Error(t, err)
}

func TestPaymentClient_CircuitOpen(t *testing.T) {
	_, err := CircuitOpenFallback(context.Background(), httpclient.ErrCircuitOpen)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}
