package unified

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
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/query/unified", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"query_type":       "DATABASE",
			"response":         "3 devices offline",
			"database_results": []map[string]interface{}{{"device": "d1"}},
			"row_count":        1,
			"sql_query":        "SELECT device FROM telemetry",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Query(context.Background(), "how many offline?")

	require.NoError(t, err)
	assert.Equal(t, "DATABASE", result.QueryType)
	assert.Equal(t, "3 devices offline", result.AnswerText)
	assert.Equal(t, 1, result.RowCount)
	assert.Equal(t, "SELECT device FROM telemetry", result.QueryText)
}

func TestQueryRowsNeverNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"query_type": "LLM_ANSWER",
			"response":   "the fleet looks healthy",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Query(context.Background(), "overall health?")

	require.NoError(t, err)
	assert.NotNil(t, result.Rows)
	assert.Zero(t, result.RowCount)
}

func TestQueryBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "sql generation failed",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Query(context.Background(), "broken")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sql generation failed")
}
