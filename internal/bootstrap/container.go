package bootstrap

import (
	"context"
	"log"
	"time"

	"iot-console-be/internal/config"
	"iot-console-be/internal/controller"
	"iot-console-be/internal/handler"
	"iot-console-be/internal/pkg/logger"
	"iot-console-be/internal/repository/memory"
	"iot-console-be/internal/repository/unitofwork"
	"iot-console-be/internal/service"
	"iot-console-be/internal/websocket"
	"iot-console-be/pkg/client/docquery"
	"iot-console-be/pkg/client/strategy"
	"iot-console-be/pkg/client/unified"
	"iot-console-be/pkg/jobs"

	pktNats "iot-console-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const jobEventsTopic = "job_events"

type Container struct {
	// Controllers
	ChatController           controller.IChatController
	CatalogController        controller.ICatalogController
	RecommendationController controller.IRecommendationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	JobFeedHandler *handler.JobFeedHandler
	WebSocketHub   *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Backend Clients
	timeout := time.Duration(cfg.Backends.RequestTimeoutSec) * time.Second
	docClient := docquery.NewClient(cfg.Backends.DocQueryBaseURL, cfg.Backends.DocQueryTopK, timeout)
	unifiedClient := unified.NewClient(cfg.Backends.UnifiedQueryBaseURL, timeout)
	strategyClient := strategy.NewClient(cfg.Backends.StrategyAgentBaseURL, timeout)

	// In-Memory State
	sessionRepo := memory.NewSessionRepository()
	bundleCache := memory.NewBundleCache()
	jobRegistry := jobs.NewRegistry()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/jobs.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(jobEventsTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		jobEventsTopic,
		jobRegistry,
		bundleCache,
		wsHub,
		natsSub,
		publisherService,
		wsLogger,
	)

	stateService := service.NewSessionStateService(sessionRepo, strategyClient, docClient, unifiedClient)
	chatService := service.NewChatService(uowFactory, stateService, natsPub, sysLogger)
	catalogService := service.NewCatalogService(stateService, strategyClient)
	recommendationService := service.NewRecommendationService(
		jobRegistry,
		strategyClient,
		bundleCache,
		publisherService,
		natsPub,
		sysLogger,
		natsSub != nil, // without the event feed, jobs finish on the trigger result
	)

	// Relay external job lifecycle events into the internal topic
	if natsSub != nil {
		go consumerService.Start()
	}

	sysLogger.Info("Bootstrap", "Container initialized", map[string]interface{}{
		"doc_query":      cfg.Backends.DocQueryBaseURL,
		"unified_query":  cfg.Backends.UnifiedQueryBaseURL,
		"strategy_agent": cfg.Backends.StrategyAgentBaseURL,
	})

	// 5. Controllers
	return &Container{
		ChatController:           controller.NewChatController(chatService),
		CatalogController:        controller.NewCatalogController(catalogService),
		RecommendationController: controller.NewRecommendationController(recommendationService),

		ConsumerService: consumerService,

		JobFeedHandler: handler.NewJobFeedHandler(wsHub, jobRegistry, wsLogger),
		WebSocketHub:   wsHub,
	}
}
