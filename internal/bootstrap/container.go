package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"lessonplan-bot-be/internal/config"
	"lessonplan-bot-be/internal/controller"
	"lessonplan-bot-be/internal/pkg/logger"
	"lessonplan-bot-be/internal/repository/contract"
	"lessonplan-bot-be/internal/repository/memory"
	redisRepo "lessonplan-bot-be/internal/repository/redis"
	"lessonplan-bot-be/internal/service"
	"lessonplan-bot-be/pkg/extractor"
	"lessonplan-bot-be/pkg/messenger"
	"lessonplan-bot-be/pkg/pipeline"
	"lessonplan-bot-be/pkg/search"
	"lessonplan-bot-be/pkg/summarizer"

	pktNats "lessonplan-bot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	WebhookController controller.IWebhookController

	// Services
	BotService      service.IBotService
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every collaborator. Only a failure the bot cannot run
// without (sentence tokenizer, page cache) is returned; optional infrastructure
// degrades with a warning.
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	pubSub := newUpdateBus(watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Capabilities probed once at startup
	cfg.OCR.Available = cfg.OCR.Enabled && extractor.DetectOCR(cfg.OCR.TesseractPath)
	if cfg.OCR.Available {
		log.Printf("[INFO] OCR enabled (%s)", cfg.OCR.TesseractPath)
	} else {
		log.Printf("[WARN] OCR unavailable: photos will be refused")
	}

	// 4. Domain collaborators
	textRank, err := summarizer.New(cfg.NLP.DataDir)
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w", err)
	}

	sourceExtractor := extractor.New(extractor.Options{
		MaxChars:      cfg.Search.MaxSourceChars,
		OCRAvailable:  cfg.OCR.Available,
		TesseractPath: cfg.OCR.TesseractPath,
	})

	webLookup, err := search.NewLookup(
		search.NewDuckDuckGo(cfg.Search.Endpoint, extractor.DefaultUserAgent),
		sourceExtractor,
		cfg.Search.PageCacheSize,
	)
	if err != nil {
		return nil, fmt.Errorf("web lookup: %w", err)
	}

	telegram := messenger.NewTelegram(cfg.Telegram.APIURL, cfg.Telegram.Token)
	lessons := pipeline.New(textRank)

	// 5. Infrastructure
	sessionRepo := newSessionRepository(cfg, c)

	var eventPublisher pktNats.EventPublisher = pktNats.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 6. Services
	c.BotService = service.NewBotService(
		sessionRepo,
		telegram,
		sourceExtractor,
		webLookup,
		lessons,
		eventPublisher,
		sysLogger,
		service.BotOptions{
			DefaultTemplatePath: cfg.Template.DefaultPath,
			TemplateDir:         cfg.Template.UploadDir,
			SearchResults:       cfg.Search.Results,
		},
	)
	publisherService := service.NewPublisherService(cfg.App.UpdatesTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.UpdatesTopic, c.BotService, sysLogger)

	// 7. Controllers
	c.WebhookController = controller.NewWebhookController(publisherService, sysLogger)

	return c, nil
}

// newUpdateBus hands each update to the consumer before Publish returns, so
// nothing accepted by the webhook is left buffered when the bus closes.
func newUpdateBus(log watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		},
		log,
	)
}

func newSessionRepository(cfg *config.Config, c *Container) contract.SessionRepository {
	if cfg.Session.Store != "redis" {
		log.Printf("[INFO] Using in-memory session store")
		return memory.NewSessionRepository(cfg.Session.TTL)
	}

	opt, err := redis.ParseURL(cfg.Session.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.Session.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory sessions", err)
		_ = rdb.Close()
		return memory.NewSessionRepository(cfg.Session.TTL)
	}

	log.Printf("[INFO] Using Redis session store")
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return redisRepo.NewSessionRepository(rdb, cfg.Session.TTL)
}

// Close drains in-flight updates, then releases infrastructure. The HTTP server
// must already be stopped.
func (c *Container) Close() {
	if c.ConsumerService != nil {
		c.ConsumerService.Wait()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
