package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func newTestClient(hub *Hub) *Client {
	client := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 4)}
	hub.clients[client.UserID] = []*Client{client}
	return client
}

func decodeEnvelope(t *testing.T, raw []byte) (string, JobUpdate) {
	t.Helper()
	var envelope struct {
		Type string    `json:"type"`
		Data JobUpdate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Type, envelope.Data
}

func TestSendTargetsOneUser(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	target := newTestClient(hub)
	other := newTestClient(hub)

	hub.Send(target.UserID, JobUpdate{EntityKey: "C001", State: "RUNNING", Message: "working"})

	select {
	case raw := <-target.Send:
		kind, update := decodeEnvelope(t, raw)
		assert.Equal(t, "job_status", kind)
		assert.Equal(t, "C001", update.EntityKey)
		assert.Equal(t, "RUNNING", update.State)
	default:
		t.Fatal("targeted client received nothing")
	}

	assert.Empty(t, other.Send, "Send must not leak to other users")
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	first := newTestClient(hub)
	second := newTestClient(hub)

	hub.Broadcast(JobUpdate{EntityKey: "ALL", State: "SUCCEEDED", Message: "done"})

	for _, client := range []*Client{first, second} {
		select {
		case raw := <-client.Send:
			kind, update := decodeEnvelope(t, raw)
			assert.Equal(t, "job_status", kind)
			assert.Equal(t, "ALL", update.EntityKey)
		default:
			t.Fatalf("client %s missed the broadcast", client.UserID)
		}
	}
}
