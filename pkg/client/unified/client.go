package unified

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the unified query backend, which classifies a free-text
// question itself and answers it from the database, from generation, or
// both. The classification comes back with the answer.
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

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Success         bool                     `json:"success"`
	QueryType       string                   `json:"query_type"`
	Response        string                   `json:"response"`
	DatabaseResults []map[string]interface{} `json:"database_results"`
	RowCount        *int                     `json:"row_count"`
	SqlQuery        string                   `json:"sql_query"`
	Error           string                   `json:"error"`
}

// Result is the normalized unified answer. QueryType is the backend's own
// classification string (DATABASE, MIXED, LLM_ANSWER, UNKNOWN, or a vendor
// extension); callers normalize it to the conversation taxonomy.
type Result struct {
	AnswerText string
	QueryType  string
	Rows       []map[string]interface{}
	RowCount   int
	QueryText  string
}

// Query sends one question to the unified backend.
func (c *Client) Query(ctx context.Context, query string) (*Result, error) {
	payload, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/api/query/unified"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unified query request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unified query error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("unified query failed: %s", parsed.Error)
	}

	rows := parsed.DatabaseResults
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	rowCount := len(rows)
	if parsed.RowCount != nil {
		rowCount = *parsed.RowCount
	}

	return &Result{
		AnswerText: parsed.Response,
		QueryType:  parsed.QueryType,
		Rows:       rows,
		RowCount:   rowCount,
		QueryText:  parsed.SqlQuery,
	}, nil
}
