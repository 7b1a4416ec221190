package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"iot-console-be/internal/dto"
	"iot-console-be/internal/pkg/logger"
	"iot-console-be/internal/repository/memory"
	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/client/strategy"
	"iot-console-be/pkg/events"
	"iot-console-be/pkg/jobs"
	pktNats "iot-console-be/pkg/nats"
	"iot-console-be/pkg/recommend"

	"github.com/gofiber/fiber/v2"
)

// StrategyAgent is the slice of the strategy client this service needs.
type StrategyAgent interface {
	Trigger(ctx context.Context, customerId string, force bool) (*strategy.TriggerResult, error)
	ListCustomers(ctx context.Context) ([]strategy.Customer, error)
	FetchBundle(ctx context.Context, customerId string) (*recommend.Bundle, error)
	FetchAllBundles(ctx context.Context) ([]recommend.Bundle, error)
	Health(ctx context.Context) error
}

type IRecommendationService interface {
	StartJob(ctx context.Context, req *dto.StartJobRequest) (*dto.StartJobResponse, error)
	JobStatus(entityKey string) *dto.JobStatusResponse
	View(ctx context.Context, entityKey string) (*dto.RecommendationViewResponse, error)
	Health(ctx context.Context) error
}

type recommendationService struct {
	registry       *jobs.Registry
	agent          StrategyAgent
	bundles        *memory.BundleCache
	jobPublisher   IPublisherService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger

	// externalEvents is true when a completion feed is attached; without
	// one, jobs finish on the trigger result instead of staying RUNNING.
	externalEvents bool
}

func NewRecommendationService(
	registry *jobs.Registry,
	agent StrategyAgent,
	bundles *memory.BundleCache,
	jobPublisher IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	externalEvents bool,
) IRecommendationService {
	return &recommendationService{
		registry:       registry,
		agent:          agent,
		bundles:        bundles,
		jobPublisher:   jobPublisher,
		eventPublisher: eventPublisher,
		logger:         log,
		externalEvents: externalEvents,
	}
}

// StartJob asks the strategy agent to regenerate recommendations for one
// customer, or for everyone via the ALL key. The agent works asynchronously:
// a successful start leaves the job RUNNING until a completion event arrives
// on the bus. Duplicate starts for a key already running are rejected
// without touching the in-flight job.
func (s *recommendationService) StartJob(ctx context.Context, req *dto.StartJobRequest) (*dto.StartJobResponse, error) {
	if !s.registry.Start(req.EntityKey, "Generating recommendations...") {
		record := s.registry.Get(req.EntityKey)
		return &dto.StartJobResponse{
			Started: false,
			State:   string(record.State),
			Message: "a regeneration job is already running for this customer",
		}, nil
	}

	if err := s.trigger(ctx, req.EntityKey, req.Force); err != nil {
		s.registry.Fail(req.EntityKey, err.Error())
		return &dto.StartJobResponse{
			Started: false,
			State:   string(jobs.StateFailed),
			Message: err.Error(),
		}, nil
	}

	s.publishJobEvent(ctx, req.EntityKey, string(jobs.StateRunning), "Generating recommendations...")

	if !s.externalEvents {
		// No completion feed is attached, so the accepted trigger is the
		// last signal this job will ever get.
		s.registry.Complete(req.EntityKey, "Recommendations updated")
		s.publishJobEvent(ctx, req.EntityKey, string(jobs.StateSucceeded), "Recommendations updated")
	}

	record := s.registry.Get(req.EntityKey)
	return &dto.StartJobResponse{
		Started: true,
		State:   string(record.State),
		Message: record.Message,
	}, nil
}

func (s *recommendationService) trigger(ctx context.Context, entityKey string, force bool) error {
	if entityKey != catalog.AllKey {
		result, err := s.agent.Trigger(ctx, entityKey, force)
		if err != nil {
			return err
		}
		if !result.Accepted {
			return fmt.Errorf("strategy agent rejected the request: %s", result.Message)
		}
		return nil
	}

	// ALL fans out to one trigger per customer. A single bad customer must
	// not sink the batch; the job fails only when nobody accepted.
	customers, err := s.agent.ListCustomers(ctx)
	if err != nil {
		return err
	}

	accepted := 0
	for _, customer := range customers {
		result, err := s.agent.Trigger(ctx, customer.Id, force)
		if err != nil {
			s.logger.Warn("RecommendationService", "Trigger failed for customer", map[string]interface{}{
				"customer_id": customer.Id,
				"error":       err.Error(),
			})
			continue
		}
		if result.Accepted {
			accepted++
		}
	}
	if accepted == 0 {
		return fmt.Errorf("no customer accepted the regeneration request")
	}
	return nil
}

func (s *recommendationService) JobStatus(entityKey string) *dto.JobStatusResponse {
	record := s.registry.Get(entityKey)

	var startedAt *time.Time
	if !record.StartedAt.IsZero() {
		t := record.StartedAt
		startedAt = &t
	}

	return &dto.JobStatusResponse{
		EntityKey: record.EntityKey,
		State:     string(record.State),
		Message:   record.Message,
		StartedAt: startedAt,
	}
}

// View assembles the tabbed recommendation view for one customer or for
// everyone. Single-customer views are served from the bundle cache when the
// entry is fresh.
func (s *recommendationService) View(ctx context.Context, entityKey string) (*dto.RecommendationViewResponse, error) {
	var bundles []recommend.Bundle

	if entityKey == catalog.AllKey {
		all, err := s.agent.FetchAllBundles(ctx)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadGateway, "recommendations are unavailable right now")
		}
		for _, bundle := range all {
			s.bundles.Save(bundle)
		}
		bundles = all
	} else {
		bundle, err := s.fetchOne(ctx, entityKey)
		if err != nil {
			return nil, err
		}
		bundles = []recommend.Bundle{bundle}
	}

	view := recommend.Merge(bundles)
	return &dto.RecommendationViewResponse{
		View:    view,
		Summary: recommend.Rollup(bundles),
	}, nil
}

func (s *recommendationService) fetchOne(ctx context.Context, entityKey string) (recommend.Bundle, error) {
	if cached, found := s.bundles.Get(entityKey); found {
		return cached, nil
	}

	bundle, err := s.agent.FetchBundle(ctx, entityKey)
	if err != nil {
		return recommend.Bundle{}, fiber.NewError(fiber.StatusBadGateway, "recommendations are unavailable right now")
	}
	s.bundles.Save(*bundle)
	return *bundle, nil
}

// Health proxies the strategy agent's health check.
func (s *recommendationService) Health(ctx context.Context) error {
	if err := s.agent.Health(ctx); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "strategy agent is unreachable")
	}
	return nil
}

func (s *recommendationService) publishJobEvent(ctx context.Context, entityKey, state, message string) {
	payload, err := json.Marshal(dto.PublishJobEventMessage{
		EntityKey: entityKey,
		State:     state,
		Message:   message,
	})
	if err == nil {
		if err := s.jobPublisher.Publish(ctx, payload); err != nil {
			s.logger.Warn("RecommendationService", "Failed to publish job event", map[string]interface{}{"error": err.Error()})
		}
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "JOB_STARTED",
			Data: map[string]interface{}{
				"entity_key": entityKey,
				"state":      state,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("RecommendationService", "Failed to publish JOB_STARTED event", map[string]interface{}{"error": err.Error()})
		}
	}
}
