package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"

	"copyflow-be/internal/anonymizer"
	"copyflow-be/internal/config"
	"copyflow-be/internal/controller"
	"copyflow-be/internal/handler"
	"copyflow-be/internal/ingestion"
	"copyflow-be/internal/pkg/logger"
	"copyflow-be/internal/repository/contract"
	"copyflow-be/internal/repository/memory"
	"copyflow-be/internal/repository/rediscache"
	"copyflow-be/internal/repository/sqlite"
	"copyflow-be/internal/repository/unitofwork"
	"copyflow-be/internal/service"
	"copyflow-be/internal/websocket"
	"copyflow-be/internal/workflow"
	"copyflow-be/pkg/gateway"
	"copyflow-be/pkg/llm/factory"

	pktNats "copyflow-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WorkflowController   controller.IWorkflowController
	SlotController       controller.ISlotController
	GenerationController controller.IGenerationController
	SystemController     controller.ISystemController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StageHandler *handler.StageHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every service. db may be nil, in which case durable
// slots live in sqlite (SQLITE_PATH) or in memory and the event log is off.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	c := &Container{Logger: sysLogger}
	checks := make(map[string]controller.HealthCheck)

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// Redis (optional, used for session slots and websocket fan-out)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// NATS (optional, durable copy of every stage event)
	var bus service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, cfg.Storage.EventsMaxAge)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			bus = natsPub
			checks["nats"] = func(ctx context.Context) error { return natsPub.Ping() }
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 4. Stores
	durable := durableSlotStore(uowFactory, cfg, c)
	var sessionSlots contract.SlotStore
	if cfg.Session.Store == "redis" && rdb != nil {
		sessionSlots = rediscache.NewSlotStore(rdb, cfg.Session.TTL)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionSlots = memory.NewSlotStore(cfg.Session.TTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}
	pageSessions := memory.NewPageSessionRepository(cfg.Session.TTL)

	pages, err := loadPages(cfg.Storage.PagesFile)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load page definitions: %v", err)
	}

	// 5. Services
	gw, err := NewGateway(cfg, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize gateway: %v", err)
	}
	extractor := ingestion.NewExtractor(ingestion.WithMaxSize(int64(cfg.Storage.MaxUploadSize)))

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.StageLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	publisherService := service.NewPublisherService(cfg.App.StageTopic, pubSub, bus, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.StageTopic,
		uowFactory,
		wsHub, // Hub implements StageDelivery
		cfg.Storage.EventsMaxAge,
		sysLogger,
	)

	slotService := service.NewSlotService(durable, sessionSlots)
	documentService := service.NewDocumentService(slotService)
	comparisonService := service.NewComparisonService(extractor, gw, slotService)
	generationService := service.NewGenerationService(extractor, gw)
	workflowService := service.NewWorkflowService(
		pages,
		pageSessions,
		slotService,
		extractor,
		gw,
		publisherService,
		uowFactory,
		sysLogger,
		service.SessionConfig{Secret: cfg.Session.Secret, TTL: cfg.Session.TTL},
	)

	// 6. Controllers
	c.WorkflowController = controller.NewWorkflowController(workflowService, comparisonService, documentService, cfg.Session.Secret)
	c.SlotController = controller.NewSlotController(slotService, cfg.Session.Secret)
	c.GenerationController = controller.NewGenerationController(generationService, comparisonService, documentService)
	c.SystemController = controller.NewSystemController(sysLogger, checks)
	c.StageHandler = handler.NewStageHandler(wsHub, cfg.Session.Secret, wsLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	return c
}

// Close releases the connections opened by NewContainer.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func durableSlotStore(uowFactory unitofwork.RepositoryFactory, cfg *config.Config, c *Container) contract.SlotStore {
	if uowFactory != nil {
		log.Printf("[INFO] Using Durable Slot Store: POSTGRES")
		return uowFactory.NewUnitOfWork(context.Background()).WorkflowSlotRepository()
	}
	if cfg.Storage.SqlitePath != "" {
		store, err := sqlite.Open(cfg.Storage.SqlitePath)
		if err == nil {
			log.Printf("[INFO] Using Durable Slot Store: SQLITE (%s)", cfg.Storage.SqlitePath)
			c.closers = append(c.closers, func() { _ = store.Close() })
			return store
		}
		log.Printf("[WARN] Failed to open sqlite slot store: %v", err)
	}
	log.Printf("[WARN] Using Durable Slot Store: MEMORY (slots are lost on restart)")
	return memory.NewSlotStore(0)
}

func loadPages(path string) (*workflow.Pages, error) {
	if path == "" {
		return workflow.DefaultPages()
	}
	return workflow.LoadPagesFile(path)
}

func loadAnonymizer(path string) (*anonymizer.Anonymizer, error) {
	if path == "" {
		return anonymizer.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords file: %w", err)
	}
	defer f.Close()
	return anonymizer.Load(f)
}

// NewGateway selects the primary backend. Every mode is wrapped so a failing
// primary degrades to the fallback generator.
func NewGateway(cfg *config.Config, sysLogger logger.ILogger) (gateway.Gateway, error) {
	var primary gateway.Gateway

	switch cfg.Gateway.Mode {
	case "remote", "":
		primary = gateway.NewHTTPGateway(cfg.Gateway.URL, cfg.Gateway.Timeout)
		log.Printf("[INFO] Using Gateway: REMOTE (%s)", cfg.Gateway.URL)
	case "llm":
		baseURL := cfg.Ai.OllamaBaseURL
		if cfg.Ai.LLMProvider == "huggingface" {
			baseURL = cfg.Ai.HuggingFaceURL
		}
		llmProvider, err := factory.NewLLMProvider(factory.Params{
			Provider: cfg.Ai.LLMProvider,
			Model:    cfg.Ai.LLMModel,
			BaseURL:  baseURL,
			APIKey:   cfg.Ai.HuggingFaceKey,
			Timeout:  cfg.Gateway.Timeout,
		})
		if err != nil {
			return nil, err
		}
		anon, err := loadAnonymizer(cfg.Storage.KeywordsFile)
		if err != nil {
			return nil, err
		}
		primary = gateway.NewLLMGateway(llmProvider, anon)
		log.Printf("[INFO] Using Gateway: LLM %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	case "fallback":
		log.Printf("[INFO] Using Gateway: FALLBACK only")
	default:
		return nil, fmt.Errorf("unsupported gateway mode: %s", cfg.Gateway.Mode)
	}

	return gateway.NewResilient(primary, gateway.NewFallback(nil), sysLogger), nil
}
