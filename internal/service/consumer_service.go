package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"iot-console-be/internal/dto"
	"iot-console-be/internal/pkg/logger"
	"iot-console-be/internal/repository/memory"
	internalWS "iot-console-be/internal/websocket"
	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/events"
	"iot-console-be/pkg/jobs"
	pktNats "iot-console-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	Start()
}

// consumerService drains the internal job event topic and applies each
// event: the registry moves, stale bundles drop out of the cache, and open
// consoles get a websocket push. It also relays the strategy agent's
// completion events from NATS onto the same internal topic, so both paths
// converge on one handler.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	registry   *jobs.Registry
	bundles    *memory.BundleCache
	hub        *internalWS.Hub
	subscriber *pktNats.Subscriber
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	registry *jobs.Registry,
	bundles *memory.BundleCache,
	hub *internalWS.Hub,
	subscriber *pktNats.Subscriber,
	publisher IPublisherService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		registry:   registry,
		bundles:    bundles,
		hub:        hub,
		subscriber: subscriber,
		publisher:  publisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.PublishJobEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal job event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("ConsumerService", "Processing job event", map[string]interface{}{
		"entity_key": payload.EntityKey,
		"state":      payload.State,
	})

	switch jobs.State(strings.ToUpper(payload.State)) {
	case jobs.StateSucceeded:
		if !cs.registry.Complete(payload.EntityKey, payload.Message) {
			// Job was reset while in flight; nothing to apply
			cs.logger.Warn("ConsumerService", "Dropped completion for non-running job", map[string]interface{}{"entity_key": payload.EntityKey})
		}
		cs.invalidate(payload.EntityKey)
	case jobs.StateFailed:
		cs.registry.Fail(payload.EntityKey, payload.Message)
	}

	cs.hub.Broadcast(internalWS.JobUpdate{
		EntityKey: payload.EntityKey,
		State:     strings.ToUpper(payload.State),
		Message:   payload.Message,
	})

	msg.Ack()
}

func (cs *consumerService) invalidate(entityKey string) {
	if entityKey == catalog.AllKey {
		cs.bundles.Flush()
		return
	}
	cs.bundles.Invalidate(entityKey)
}

// Start subscribes to the strategy agent's job lifecycle events on NATS and
// relays them to the internal topic.
func (cs *consumerService) Start() {
	if cs.subscriber == nil {
		cs.logger.Warn("ConsumerService", "NATS unavailable, external job events disabled", nil)
		return
	}

	err := cs.subscriber.Subscribe("events.recommendation.>", "job-status-worker", cs.handleExternalEvent)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to start job event subscriber", map[string]interface{}{"error": err})
		return
	}
	cs.logger.Info("ConsumerService", "Listening for recommendation events", nil)
}

func (cs *consumerService) handleExternalEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	entityKey, _ := payload["entity_key"].(string)
	if entityKey == "" {
		entityKey, _ = payload["customer_id"].(string)
	}
	if entityKey == "" {
		cs.logger.Warn("ConsumerService", "Job event without entity key", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	state, _ := payload["state"].(string)
	if state == "" {
		// Subject form events.recommendation.completed / .failed
		if strings.HasSuffix(event.EventType(), ".completed") {
			state = string(jobs.StateSucceeded)
		} else {
			state = string(jobs.StateFailed)
		}
	}

	message, _ := payload["message"].(string)
	if message == "" {
		message = fmt.Sprintf("Recommendations for %s updated", entityKey)
	}

	relayed, err := json.Marshal(dto.PublishJobEventMessage{
		EntityKey: entityKey,
		State:     state,
		Message:   message,
	})
	if err != nil {
		return err
	}
	return cs.publisher.Publish(ctx, relayed)
}
