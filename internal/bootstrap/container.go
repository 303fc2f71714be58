package bootstrap

import (
	"context"
	"log"
	"time"

	"loan-assist-be/internal/config"
	"loan-assist-be/internal/controller"
	"loan-assist-be/internal/handler"
	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/internal/repository/contract"
	"loan-assist-be/internal/repository/implementation"
	"loan-assist-be/internal/repository/memory"
	"loan-assist-be/internal/service"
	"loan-assist-be/internal/websocket"
	"loan-assist-be/pkg/document"
	"loan-assist-be/pkg/document/gcs"
	"loan-assist-be/pkg/events"
	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/llm/factory"
	"loan-assist-be/pkg/metrics"
	pktNats "loan-assist-be/pkg/nats"
	"loan-assist-be/pkg/responder"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController controller.ISessionController
	LoanController    controller.ILoanController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	Hub             *websocket.Hub
	ContextStore    *memory.ContextStore

	Logger  logger.ILogger
	closers []func()
}

// NewContainer wires every component. db may be nil, in which case session
// endpoints that need the row store answer with a configuration error.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	rtLogger := logger.NewIsolatedLogger(cfg.Realtime.LogFilePath)
	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = rtLogger.Sync() })

	var repo contract.LoanSessionRepository
	if db != nil {
		repo = implementation.NewLoanSessionRepository(db)
	}

	// 2. Object storage
	var blobs document.BlobStore
	if store, err := gcs.NewStore(ctx, cfg.Storage.CredentialsFile, sysLogger); err != nil {
		log.Printf("[WARN] Cloud Storage unavailable, text documents will resolve empty: %v", err)
	} else {
		blobs = store
		c.closers = append(c.closers, func() { _ = store.Close() })
	}

	// 3. Generative model
	var provider llm.LLMProvider
	provider, err := factory.NewLLMProvider(ctx, factory.ProviderConfig{
		Provider:          cfg.Ai.LLMProvider,
		Model:             cfg.Ai.LLMModel,
		OllamaBaseURL:     cfg.Ai.OllamaBaseURL,
		GeminiAPIKey:      cfg.Ai.GoogleGemini,
		HuggingFaceAPIKey: cfg.Ai.HuggingFaceAPIKey,
		HuggingFaceURL:    cfg.Ai.HuggingFaceURL,
		ProjectID:         cfg.Ai.ProjectID,
		Region:            cfg.Ai.Region,
		RequestsPerSecond: cfg.Ai.RequestsPerSecond,
	})
	if err != nil {
		log.Printf("[WARN] Failed to initialize LLM Provider, answers will fall back to apologies: %v", err)
		provider = nil
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}
	llmTimeout := time.Duration(cfg.Ai.TimeoutSeconds) * time.Second

	answerResponder := responder.NewResponder(provider, llmTimeout, sysLogger)
	answerResponder.OnFallback(metrics.ResponderFallbacks.Inc)

	// 4. Infrastructure
	var publisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 5. Session state and realtime
	c.ContextStore = memory.NewContextStore()
	c.Hub = websocket.NewHub(c.ContextStore, rdb, rtLogger)

	// 6. Conversation flush queue
	var persister service.ConversationPersister
	if repo != nil {
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermill.NewStdLogger(false, false))
		persister = service.NewPublisherService(cfg.Realtime.ConversationFlushTopic, pubSub)
		c.ConsumerService = service.NewConsumerService(pubSub, cfg.Realtime.ConversationFlushTopic, repo, sysLogger)
		c.closers = append(c.closers, func() { _ = pubSub.Close() })
	}

	// 7. Services
	sessionService := service.NewSessionService(service.SessionServiceDeps{
		Repository: repo,
		Contexts:   c.ContextStore,
		Fetcher:    document.NewFetcher(blobs, cfg.Storage.DefaultBucket, sysLogger),
		Summarizer: document.NewSummarizer(provider, sysLogger),
		Responder:  answerResponder,
		Persister:  persister,
		Publisher:  publisher,
		Teardown:   c.Hub,
		Logger:     sysLogger,
	})
	loanService := service.NewLoanService(provider, llmTimeout, sysLogger)

	// 8. Controllers
	c.SessionController = controller.NewSessionController(sessionService)
	c.LoanController = controller.NewLoanController(loanService)
	c.RealtimeHandler = handler.NewRealtimeHandler(c.Hub, sessionService, rtLogger)

	return c
}

// Close releases external clients in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
