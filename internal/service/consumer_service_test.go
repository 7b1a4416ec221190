package service

import (
	"context"
	"encoding/json"
	"testing"

	"iot-console-be/internal/dto"
	"iot-console-be/internal/repository/memory"
	internalWS "iot-console-be/internal/websocket"
	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/events"
	"iot-console-be/pkg/jobs"
	"iot-console-be/pkg/recommend"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func newConsumerFixture() (*consumerService, *jobs.Registry, *memory.BundleCache, *fakePublisher) {
	registry := jobs.NewRegistry()
	bundles := memory.NewBundleCache()
	publisher := &fakePublisher{}
	hub := internalWS.NewHub(nil, noopLogger{})
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	cs := NewConsumerService(pubSub, "job_events", registry, bundles, hub, nil, publisher, noopLogger{}).(*consumerService)
	return cs, registry, bundles, publisher
}

func jobEventMessage(t *testing.T, entityKey, state, msg string) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishJobEventMessage{
		EntityKey: entityKey,
		State:     state,
		Message:   msg,
	})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func TestCompletionEventFinishesJobAndInvalidatesCache(t *testing.T) {
	cs, registry, bundles, _ := newConsumerFixture()

	registry.Start("C001", "Generating recommendations...")
	bundles.Save(recommend.Bundle{EntityId: "C001"})

	cs.processMessage(jobEventMessage(t, "C001", "SUCCEEDED", "done"))

	record := registry.Get("C001")
	assert.Equal(t, jobs.StateSucceeded, record.State)
	assert.Equal(t, "done", record.Message)

	_, found := bundles.Get("C001")
	assert.False(t, found, "stale bundle should be evicted on completion")
}

func TestCompletionForAllFlushesWholeCache(t *testing.T) {
	cs, registry, bundles, _ := newConsumerFixture()

	registry.Start(catalog.AllKey, "Generating recommendations...")
	bundles.Save(recommend.Bundle{EntityId: "C001"})
	bundles.Save(recommend.Bundle{EntityId: "C002"})

	cs.processMessage(jobEventMessage(t, catalog.AllKey, "SUCCEEDED", "done"))

	_, found1 := bundles.Get("C001")
	_, found2 := bundles.Get("C002")
	assert.False(t, found1)
	assert.False(t, found2)
}

func TestFailureEventMarksJobFailed(t *testing.T) {
	cs, registry, _, _ := newConsumerFixture()

	registry.Start("C001", "Generating recommendations...")
	cs.processMessage(jobEventMessage(t, "C001", "FAILED", "agent error"))

	record := registry.Get("C001")
	assert.Equal(t, jobs.StateFailed, record.State)
	assert.Equal(t, "agent error", record.Message)
}

func TestCompletionForResetJobIsDropped(t *testing.T) {
	cs, registry, _, _ := newConsumerFixture()

	registry.Start("C001", "Generating recommendations...")
	registry.Reset("C001")

	cs.processMessage(jobEventMessage(t, "C001", "SUCCEEDED", "done"))

	assert.Equal(t, jobs.StateIdle, registry.Get("C001").State)
}

func TestMalformedEventIsAcked(t *testing.T) {
	cs, _, _, _ := newConsumerFixture()

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	cs.processMessage(msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("malformed message should be acked to stop redelivery")
	}
}

func TestExternalEventIsRelayed(t *testing.T) {
	cs, _, _, publisher := newConsumerFixture()

	err := cs.handleExternalEvent(context.Background(), events.BaseEvent{
		Type: "events.recommendation.completed",
		Data: map[string]interface{}{"customer_id": "C001"},
	})
	require.NoError(t, err)

	require.Len(t, publisher.payloads, 1)
	var relayed dto.PublishJobEventMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &relayed))
	assert.Equal(t, "C001", relayed.EntityKey)
	assert.Equal(t, string(jobs.StateSucceeded), relayed.State)
}

func TestExternalEventWithoutEntityKeyIsIgnored(t *testing.T) {
	cs, _, _, publisher := newConsumerFixture()

	err := cs.handleExternalEvent(context.Background(), events.BaseEvent{
		Type: "events.recommendation.completed",
		Data: map[string]interface{}{},
	})
	require.NoError(t, err)
	assert.Empty(t, publisher.payloads)
}
