package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/httpclient"
)

// CircuitOpenFallback is used while the payment circuit is open.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("payment is temporarily unavailable, please retry shortly")
}

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Payment outcomes reported back by the gateway redirect.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type paymentItem struct {
	ProductID domain.ProductID `json:"product_id"`
	Quantity  int              `json:"quantity"`
}

// initiateRequest is the backend's payment initiation body. Amounts are rupees.
type initiateRequest struct {
	Amount      float64       `json:"amount"`
	FirstName   string        `json:"firstname"`
	Email       string        `json:"email"`
	ProductInfo string        `json:"productinfo"`
	Items       []paymentItem `json:"items"`
	Phone       string        `json:"phone"`
	AddressLine string        `json:"address_line"`
	City        string        `json:"city"`
	State       string        `json:"state"`
	Pincode     string        `json:"pincode"`
}

type initiateResponse struct {
	Action      string      `json:"action"`
	Key         string      `json:"key"`
	TxnID       string      `json:"txnid"`
	Amount      json.Number `json:"amount"`
	ProductInfo string      `json:"productinfo"`
	FirstName   string      `json:"firstname"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	SURL        string      `json:"surl"`
	FURL        string      `json:"furl"`
	Hash        string      `json:"hash"`
}

// Redirect is what the browser needs to post the shopper to the payment
// gateway: the form action and its hidden fields.
type Redirect struct {
	Action string            `json:"action"`
	TxnID  string            `json:"txnid"`
	Params map[string]string `json:"params"`
}

// PaymentClient starts payments through the backend.
type PaymentClient struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewPaymentClient creates a payment client for the backend at baseURL.
func NewPaymentClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *PaymentClient {
	return &PaymentClient{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Initiate registers a pending order for summary with the backend and
// returns the gateway redirect. The backend re-checks stock and may reject
// the order.
func (c *PaymentClient) Initiate(ctx context.Context, summary Summary, addr Address) (*Redirect, error) {
	items := make([]paymentItem, len(summary.Items))
	for i, l := range summary.Items {
		items[i] = paymentItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	body, err := json.Marshal(initiateRequest{
		Amount:      float64(summary.Total) / 100,
		FirstName:   addr.FullName,
		Email:       addr.Email,
		ProductInfo: fmt.Sprintf("Order for %d items", summary.ItemCount()),
		Items:       items,
		Phone:       addr.Mobile,
		AddressLine: addr.AddressLine,
		City:        addr.City,
		State:       addr.State,
		Pincode:     addr.Pincode,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment/initiate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("call payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "payment")
	}

	var pr initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	if pr.Action == "" || pr.TxnID == "" {
		return nil, fmt.Errorf("payment response missing action or txnid")
	}

	c.logger.InfoContext(ctx, "payment initiated",
		slog.String("txnid", pr.TxnID),
		slog.Int64("total_paise", summary.Total),
		slog.Int("items", summary.ItemCount()),
	)

	return &Redirect{
		Action: pr.Action,
		TxnID:  pr.TxnID,
		Params: map[string]string{
			"key":         pr.Key,
			"txnid":       pr.TxnID,
			"amount":      pr.Amount.String(),
			"productinfo": pr.ProductInfo,
			"firstname":   pr.FirstName,
			"email":       pr.Email,
			// The gateway is given the mobile the shopper typed at checkout.
			"phone": addr.Mobile,
			"surl":  pr.SURL,
			"furl":  pr.FURL,
			"hash":  pr.Hash,
		},
	}, nil
}
