package bootstrap

import (
	"context"
	"log"

	"ai-docrouter-be/internal/config"
	"ai-docrouter-be/internal/controller"
	"ai-docrouter-be/internal/handler"
	"ai-docrouter-be/internal/pkg/logger"
	"ai-docrouter-be/internal/repository/contract"
	"ai-docrouter-be/internal/repository/implementation"
	"ai-docrouter-be/internal/repository/memory"
	"ai-docrouter-be/internal/service"
	"ai-docrouter-be/internal/websocket"
	"ai-docrouter-be/pkg/ai/agent/emailagent"
	"ai-docrouter-be/pkg/ai/agent/jsonagent"
	"ai-docrouter-be/pkg/ai/classifier"
	aiEvents "ai-docrouter-be/pkg/ai/events"
	"ai-docrouter-be/pkg/ai/inference"
	"ai-docrouter-be/pkg/database"
	"ai-docrouter-be/pkg/llm/factory"
	sharedMemory "ai-docrouter-be/pkg/memory"

	pktNats "ai-docrouter-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	StorageDurable   = "durable"
	StorageEphemeral = "ephemeral"
)

type Container struct {
	Logger logger.ILogger

	// Core pipeline
	Orchestrator service.IOrchestratorService
	Memory       *sharedMemory.Manager
	Storage      string

	// Controllers
	ProcessController controller.IProcessController
	MemoryController  controller.IMemoryController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & activity feed
	ActivityHandler *handler.ActivityHandler
	WebSocketHub    *websocket.Hub

	db       *gorm.DB
	natsPub  *pktNats.Publisher
	rdb      *redis.Client
	pubSub   *gochannel.GoChannel
	wsLogger logger.ILogger
}

// Option adjusts how NewContainer builds its facades.
type Option func(*Container)

// WithLogger replaces the default system logger.
func WithLogger(l logger.ILogger) Option {
	return func(c *Container) {
		c.Logger = l
	}
}

func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) *Container {
	// 1. Core Facades
	c := &Container{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	sysLogger := c.Logger

	// 2. Storage
	ephemeral := memory.NewMemoryRepository()
	var primary contract.MemoryRepository = ephemeral
	c.Storage = StorageEphemeral

	if cfg.UseDurableStorage() {
		if repo, db := c.openDurable(ctx, cfg); repo != nil {
			primary = repo
			c.db = db
			c.Storage = StorageDurable
		}
	}
	sysLogger.Info("BOOTSTRAP", "Storage backend selected", map[string]interface{}{"storage": c.Storage})

	c.Memory = sharedMemory.NewManager(primary, ephemeral, sysLogger)

	// 3. Inference
	llmProvider, err := factory.NewLLMProvider(cfg.Ai, cfg.Keys.HuggingFace)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	providerName := cfg.Ai.LLMProvider
	if llmProvider == nil {
		providerName = factory.ProviderNone
		sysLogger.Warn("BOOTSTRAP", "No LLM provider configured, every component runs its deterministic fallback", nil)
	} else {
		sysLogger.Info("BOOTSTRAP", "Using LLM Provider", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"model":    cfg.Ai.LLMModel,
		})
	}
	inferenceClient := inference.NewClient(llmProvider, cfg.Ai.InferenceTimeout)

	// 4. Infrastructure
	// NATS
	var bus aiEvents.Bus
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			c.natsPub = natsPub
			bus = natsPub
		}
	}
	eventPublisher := aiEvents.NewNatsPublisher(bus, sysLogger)

	// Redis
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
			rdb.Close()
		} else {
			c.rdb = rdb
		}
	}

	// WebSocket Hub
	c.wsLogger = logger.NewIsolatedLogger(cfg.App.ActivityLogPath)
	c.WebSocketHub = websocket.NewHub(c.rdb, c.wsLogger)

	// Event Bus
	c.pubSub = gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisherService := service.NewPublisherService(service.ActivityTopic, c.pubSub, sysLogger)
	c.Memory.SetNotifier(publisherService)
	c.ConsumerService = service.NewConsumerService(
		c.pubSub,
		service.ActivityTopic,
		c.WebSocketHub,
		eventPublisher,
		sysLogger,
	)

	// 5. Pipeline
	c.Orchestrator = service.NewOrchestratorService(
		classifier.New(inferenceClient, c.Memory, sysLogger),
		jsonagent.New(inferenceClient, c.Memory, sysLogger),
		emailagent.New(inferenceClient, c.Memory, sysLogger),
		c.Memory,
		eventPublisher,
		sysLogger,
	)
	memoryService := service.NewMemoryService(c.Memory, c.Storage, providerName)

	// 6. Controllers
	c.ProcessController = controller.NewProcessController(c.Orchestrator)
	c.MemoryController = controller.NewMemoryController(memoryService)
	c.ActivityHandler = handler.NewActivityHandler(c.WebSocketHub, cfg.App.JwtSecret)

	return c
}

// openDurable connects and initialises the schema. Any failure leaves the
// process on the ephemeral store.
func (c *Container) openDurable(ctx context.Context, cfg *config.Config) (*implementation.MemoryRepositoryImpl, *gorm.DB) {
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		c.Logger.Warn("BOOTSTRAP", "Durable storage unreachable, using ephemeral store", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	repo := implementation.NewMemoryRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Schema initialization failed, using ephemeral store", map[string]interface{}{"error": err.Error()})
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		return nil, nil
	}
	return repo, db
}

// Close releases every connection the container opened.
func (c *Container) Close() {
	if c.pubSub != nil {
		c.pubSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		c.rdb.Close()
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if c.wsLogger != nil {
		c.wsLogger.Sync()
	}
	c.Logger.Sync()
}
