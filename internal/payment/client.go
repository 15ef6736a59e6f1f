package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/mkravets/brewcart/internal/checkout"
)

// Client talks to a remote payment processor over HTTP. A circuit
// breaker sits in front so a dead processor fails fast instead of tying
// up every checkout for the full timeout.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*checkout.ChargeResult]
}

func NewClient(baseURL string) *Client {
	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*checkout.ChargeResult](settings),
	}
}

type chargeRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	CardNumber string          `json:"card_number,omitempty"`
	Expiry     string          `json:"expiry,omitempty"`
	CVV        string          `json:"cvv,omitempty"`
	HolderName string          `json:"holder_name,omitempty"`
}

type chargeResponse struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (c *Client) Charge(ctx context.Context, amount decimal.Decimal, details checkout.Details) (*checkout.ChargeResult, error) {
	return c.breaker.Execute(func() (*checkout.ChargeResult, error) {
		return c.charge(ctx, amount, details)
	})
}

func (c *Client) charge(ctx context.Context, amount decimal.Decimal, details checkout.Details) (*checkout.ChargeResult, error) {
	body, err := json.Marshal(chargeRequest{
		Amount:     amount,
		Method:     string(details.Method),
		CardNumber: details.CardNumber,
		Expiry:     details.Expiry,
		CVV:        details.CVV,
		HolderName: details.HolderName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charge", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var out chargeResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode charge response: %w", decodeErr)
	}

	return &checkout.ChargeResult{
		Approved:      out.Approved,
		Reference:     out.Reference,
		DeclineReason: out.Reason,
	}, nil
}
