package bootstrap

import (
	"context"
	"log"

	"greentrip-be/internal/config"
	"greentrip-be/internal/controller"
	"greentrip-be/internal/pkg/logger"
	"greentrip-be/internal/repository/contract"
	"greentrip-be/internal/repository/implementation"
	"greentrip-be/internal/repository/memory"
	"greentrip-be/internal/service"
	"greentrip-be/internal/websocket"
	"greentrip-be/pkg/agents"
	"greentrip-be/pkg/clarification"
	"greentrip-be/pkg/events"

	pktNats "greentrip-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	ExportController controller.IExportController

	// Background Services (Exposed for main.go to run)
	PipelineService service.IPipelineService

	// WebSockets
	WebSocketHub *websocket.Hub

	// Agents backend client, exposed for health checks
	AgentsClient *agents.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Stores
	// The memory backend is a fully functional store for development and
	// tests, not a cache in front of postgres.
	var sessionRepo contract.SessionRepository
	var conversationRepo contract.ConversationRepository
	if cfg.Database.Backend == "memory" || db == nil {
		sessionRepo = memory.NewSessionRepository(cfg.Session.Timeout)
		conversationRepo = memory.NewConversationRepository()
		log.Printf("[INFO] Using store backend: MEMORY")
	} else {
		sessionRepo = implementation.NewSessionRepository(db)
		conversationRepo = implementation.NewConversationRepository(db)
		log.Printf("[INFO] Using store backend: POSTGRES")
	}

	// 4. Agents backend
	resolver := agents.NewURLResolver(
		cfg.Agents.BackendURL,
		cfg.Agents.BackendFallbackURL,
		cfg.Agents.ConnectionTimeout,
	)
	agentsClient := agents.NewClient(resolver)

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Durable audit trail of every domain event. Analytics reads this log;
	// the request path never depends on it.
	if natsSub != nil {
		auditLogger := logger.NewIsolatedLogger("logs/events.log")
		err := natsSub.Subscribe("events.>", "event-audit", func(ctx context.Context, event events.Event) error {
			auditLogger.Info("Events", "Domain event", map[string]interface{}{
				"type":    event.EventType(),
				"payload": event.Payload(),
			})
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to events stream: %v", err)
		}
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
	wsLogger := logger.NewIsolatedLogger("logs/pipeline.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	clarificationHandler := clarification.NewHandler(agentsClient, sysLogger)
	sessionManager := service.NewSessionManager(sessionRepo, sysLogger)

	conversationService := service.NewConversationService(
		sessionManager,
		conversationRepo,
		clarificationHandler,
		natsPub,
		sysLogger,
	)

	pipelineService := service.NewPipelineService(
		pubSub,
		cfg.App.PipelineTopic,
		agentsClient,
		sessionManager,
		conversationRepo,
		wsHub,
		natsPub,
		wsLogger,
	)

	exportService := service.NewExportService(conversationRepo, sysLogger)

	// 7. Controllers
	return &Container{
		ChatController:   controller.NewChatController(conversationService, pipelineService, wsHub, sysLogger),
		ExportController: controller.NewExportController(exportService),
		PipelineService:  pipelineService,
		WebSocketHub:     wsHub,
		AgentsClient:     agentsClient,
	}
}
