package docquery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query-with-ai", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"answer":          "clause 4 covers renewals",
			"sources":         []string{"page 12"},
			"processing_time": "1.2s",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 3, 5*time.Second)
	result, err := client.Query(context.Background(), "zeta_contract.pdf", "what about renewals?")

	require.NoError(t, err)
	assert.Equal(t, "clause 4 covers renewals", result.AnswerText)
	assert.Equal(t, []string{"page 12"}, result.SourceChunks)
	assert.Equal(t, "1.2s", result.ElapsedTime)
	assert.NotNil(t, result.Images)
	assert.NotNil(t, result.Tables)

	assert.Equal(t, "zeta_contract.pdf", gotBody["pdf_name"])
	assert.Equal(t, float64(3), gotBody["top_k"])
}

func TestQueryRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "document not indexed",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, 5*time.Second)
	_, err := client.Query(context.Background(), "missing.pdf", "anything")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not indexed")
}

func TestTopKDefault(t *testing.T) {
	client := NewClient("http://localhost:8000", 0, time.Second)
	assert.Equal(t, 5, client.TopK)
}
