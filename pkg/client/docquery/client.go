package docquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the document RAG service that answers questions scoped to
// one previously-indexed PDF. Indexing and vectorization live entirely on
// that side; we only send queries.
type Client struct {
	BaseURL string
	TopK    int
	client  *http.Client
}

func NewClient(baseURL string, topK int, timeout time.Duration) *Client {
	if topK <= 0 {
		topK = 5
	}
	return &Client{
		BaseURL: baseURL,
		TopK:    topK,
		client:  &http.Client{Timeout: timeout},
	}
}

type queryRequest struct {
	PdfName string `json:"pdf_name"`
	Query   string `json:"query"`
	TopK    int    `json:"top_k"`
}

type queryResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	Answer         string   `json:"answer"`
	Images         []string `json:"images"`
	Tables         []string `json:"tables"`
	Sources        []string `json:"sources"`
	ProcessingTime string   `json:"processing_time"`
}

// Result is the normalized document-scoped answer. Slices are never nil so
// downstream code does not re-check optionality.
type Result struct {
	AnswerText   string
	Images       []string
	Tables       []string
	SourceChunks []string
	ElapsedTime  string
}

// Query asks the service one question against one document.
func (c *Client) Query(ctx context.Context, documentRef, query string) (*Result, error) {
	payload, err := json.Marshal(queryRequest{
		PdfName: documentRef,
		Query:   query,
		TopK:    c.TopK,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/query-with-ai"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document query request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document query error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("document query rejected: %s", parsed.Message)
	}

	return &Result{
		AnswerText:   parsed.Answer,
		Images:       orEmpty(parsed.Images),
		Tables:       orEmpty(parsed.Tables),
		SourceChunks: orEmpty(parsed.Sources),
		ElapsedTime:  parsed.ProcessingTime,
	}, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
