// Package payment holds the PayChangu gateway client.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tiyeni/storefront/internal/port"
)

const defaultBaseURL = "https://api.paychangu.com"

// PayChanguClient talks to the PayChangu hosted-checkout REST API.
type PayChanguClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewPayChanguClient(baseURL, secretKey string) *PayChanguClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &PayChanguClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type initiateRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
	TxRef     string `json:"tx_ref"`
	ReturnURL string `json:"return_url"`
}

type initiateResponse struct {
	Status string `json:"status"`
	Data   struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
	Message string `json:"message"`
}

type verifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		TxRef    string `json:"tx_ref"`
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
	Message string `json:"message"`
}

func (c *PayChanguClient) InitiateCharge(ctx context.Context, req port.ChargeRequest) (*port.Charge, error) {
	body, err := json.Marshal(initiateRequest{
		Amount:    req.Amount,
		Currency:  req.Currency,
		Email:     req.Email,
		TxRef:     req.TxRef,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp initiateResponse
	if err := c.do(ctx, http.MethodPost, "/payment", body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("gateway rejected charge: %s", resp.Message)
	}

	return &port.Charge{
		TxRef:       req.TxRef,
		CheckoutURL: resp.Data.CheckoutURL,
		Amount:      req.Amount,
		Currency:    req.Currency,
	}, nil
}

func (c *PayChanguClient) VerifyCharge(ctx context.Context, txRef string) (*port.Charge, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, "/verify-payment/"+txRef, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("gateway verify failed: %s", resp.Message)
	}

	return &port.Charge{
		TxRef:    resp.Data.TxRef,
		Amount:   resp.Data.Amount,
		Currency: resp.Data.Currency,
		Paid:     resp.Data.Status == "success",
	}, nil
}

func (c *PayChanguClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("gateway rejected credentials: %s", string(raw))
	default:
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(raw))
	}
}
