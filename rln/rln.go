// Package rln is a typed, transport-agnostic facade over the RGB-Lightning
// node's HTTP endpoints, grounded on chantools' chain/api.go's
// http.Get/http.Post + json.Unmarshal pattern chantools' chain/api.go uses,
// generalized from a GET-only esplora client into a POST-JSON RPC-style
// client with an optional bearer token.
package rln

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/lightninglabs/thunderswap/swap"
)

// PaymentStatus is the lifecycle state of an RLN-tracked payment.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "Pending"
	StatusClaimable PaymentStatus = "Claimable"
	StatusSucceeded PaymentStatus = "Succeeded"
	StatusCancelled PaymentStatus = "Cancelled"
	StatusFailed    PaymentStatus = "Failed"
	StatusTimeout   PaymentStatus = "Timeout"
	StatusExpired   PaymentStatus = "Expired"
)

// Client talks to one RLN node over HTTP.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New builds an RLN client for the given base URL, with an optional bearer
// API key (RLN_API_KEY).
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) post(path string, req, resp interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return swap.Wrap(swap.KindInternalError, err, "encoding RLN request")
	}

	httpReq, err := http.NewRequest(
		http.MethodPost, c.BaseURL+path, bytes.NewReader(body),
	)
	if err != nil {
		return swap.Wrap(swap.KindRlnError, err, "building RLN request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpResp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return swap.Wrap(swap.KindNetworkTimeout, err, "calling RLN %s", path)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return swap.Wrap(swap.KindRlnError, err, "reading RLN response")
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return swap.New(swap.KindRlnError, "RLN %s returned %d: %s",
			path, httpResp.StatusCode, string(respBody))
	}

	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, resp); err != nil {
		return swap.Wrap(swap.KindRlnError, err,
			"decoding RLN %s response", path)
	}
	return nil
}

// DecodeResult is the response of POST /decodelninvoice.
type DecodeResult struct {
	PaymentHash string `json:"paymentHash"`
	AmtMsat     uint64 `json:"amtMsat"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"`
}

// Decode decodes a Lightning-style invoice.
func (c *Client) Decode(invoice string) (*DecodeResult, error) {
	var resp DecodeResult
	err := c.post("/decodelninvoice", map[string]string{"invoice": invoice},
		&resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PayResult is the response of POST /sendpayment.
type PayResult struct {
	Status        PaymentStatus `json:"status"`
	PaymentHash   string        `json:"paymentHash"`
	PaymentSecret string        `json:"paymentSecret"`
}

// Pay attempts to pay an invoice.
func (c *Client) Pay(invoice string) (*PayResult, error) {
	var resp PayResult
	err := c.post("/sendpayment", map[string]string{"invoice": invoice}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Payment is the inner payment record of GetPaymentResult.
type Payment struct {
	Inbound  bool          `json:"inbound"`
	Status   PaymentStatus `json:"status"`
	Preimage string        `json:"preimage,omitempty"`
}

// GetPaymentResult is the response of POST /getpayment.
type GetPaymentResult struct {
	Payment Payment `json:"payment"`
}

// GetPayment fetches the current status of a payment by its hash.
func (c *Client) GetPayment(paymentHash string) (*GetPaymentResult, error) {
	var resp GetPaymentResult
	err := c.post("/getpayment",
		map[string]string{"paymentHash": paymentHash}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPaymentPreimageResult is the response of POST /getpaymentpreimage.
type GetPaymentPreimageResult struct {
	Status   PaymentStatus `json:"status"`
	Preimage string        `json:"preimage,omitempty"`
}

// GetPaymentPreimage polls the settlement preimage for a payment hash.
func (c *Client) GetPaymentPreimage(paymentHash string) (
	*GetPaymentPreimageResult, error) {

	var resp GetPaymentPreimageResult
	err := c.post("/getpaymentpreimage",
		map[string]string{"paymentHash": paymentHash}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// InvoiceHodlRequest is the request body of POST /invoice/hodl.
type InvoiceHodlRequest struct {
	PaymentHash string `json:"paymentHash"`
	ExpirySec   uint32 `json:"expirySec"`
	AmtMsat     uint64 `json:"amtMsat"`
}

// InvoiceHodlResult is the response of POST /invoice/hodl.
type InvoiceHodlResult struct {
	Invoice       string `json:"invoice"`
	PaymentSecret string `json:"paymentSecret"`
}

// InvoiceHodl creates a HODL invoice held pending settle/cancel.
func (c *Client) InvoiceHodl(req InvoiceHodlRequest) (*InvoiceHodlResult, error) {
	var resp InvoiceHodlResult
	if err := c.post("/invoice/hodl", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InvoiceSettleRequest is the request body of POST /invoice/settle.
type InvoiceSettleRequest struct {
	PaymentHash    string `json:"paymentHash"`
	PaymentPreimage string `json:"paymentPreimage"`
}

// InvoiceSettle settles a held HODL invoice with its preimage.
func (c *Client) InvoiceSettle(req InvoiceSettleRequest) error {
	return c.post("/invoice/settle", req, nil)
}

// InvoiceCancelRequest is the request body of POST /invoice/cancel.
type InvoiceCancelRequest struct {
	PaymentHash string `json:"paymentHash"`
}

// InvoiceCancel cancels a held HODL invoice.
func (c *Client) InvoiceCancel(req InvoiceCancelRequest) error {
	return c.post("/invoice/cancel", req, nil)
}

// InvoiceStatusResult is the response of POST /invoicestatus.
type InvoiceStatusResult struct {
	Status PaymentStatus `json:"status"`
}

// InvoiceStatus fetches the terminal/non-terminal status of an invoice.
func (c *Client) InvoiceStatus(invoice string) (*InvoiceStatusResult, error) {
	var resp InvoiceStatusResult
	err := c.post("/invoicestatus", map[string]string{"invoice": invoice},
		&resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
