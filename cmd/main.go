package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pdoodle/pairing/internal/coordinator"
	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/auth"
	"github.com/pdoodle/pairing/internal/infrastructure/configs"
	"github.com/pdoodle/pairing/internal/infrastructure/events"
	"github.com/pdoodle/pairing/internal/infrastructure/logging"
	"github.com/pdoodle/pairing/internal/infrastructure/messaging"
	"github.com/pdoodle/pairing/internal/infrastructure/metrics"
	"github.com/pdoodle/pairing/internal/infrastructure/ratelimiter"
	"github.com/pdoodle/pairing/internal/infrastructure/repository"
	"github.com/pdoodle/pairing/internal/infrastructure/tracing"
	"github.com/pdoodle/pairing/internal/persistence/db"
	persistence "github.com/pdoodle/pairing/internal/persistence/repository"
	"github.com/pdoodle/pairing/internal/presentation/api"
	"github.com/pdoodle/pairing/internal/presentation/handler/health"
	"github.com/pdoodle/pairing/internal/presentation/handler/pairing"
	"github.com/pdoodle/pairing/internal/presentation/handler/token"
)

const (
	serviceName = "pairing-api"
)

func main() {
	_ = godotenv.Load()

	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())
	logger.Init()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	roomRepository := repository.NewRoomRepository(nil, cfg.Pairing.CodeAttempts, cfg.Pairing.TTL)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "rabbitmq connected", nil)

		publisher = events.NewPairingPublisher(rabbitmq)

		if cfg.Audit.Enabled {
			auditRepository, mongoClient := mustAuditRepository(ctx, logger)
			defer db.DisconnectMongo(ctx, mongoClient)

			auditConsumer := events.NewAuditConsumer(rabbitmq, auditRepository)

			go func() {
				if err := auditConsumer.Listen(); err != nil {
					logger.Error(logging.RabbitMQ, logging.ExternalService, "audit consumer stopped", map[logging.ExtraKey]any{
						logging.ErrorMessage: err.Error(),
					})
				}
			}()
		}
	}

	m := metrics.New()

	pairingCoordinator := coordinator.New(roomRepository, publisher, m, logger)

	sweeper := coordinator.NewSweeper(roomRepository, publisher, m, logger, cfg.Pairing.TTL, cfg.Pairing.SweepInterval)
	go sweeper.Run(ctx)

	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)

	pairingHandler := pairing.NewHandler(pairingCoordinator)
	healthHandler := health.NewHandler()
	tokenHandler := token.NewHandler(verifier, cfg.Auth.TokenTTL)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, pairingHandler, healthHandler, tokenHandler, verifier, m, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}

func mustAuditRepository(ctx context.Context, logger logging.Logger) (domain.PairingAuditRepository, *mongo.Client) {
	mongoCfg := db.NewMongoDefaultConfig()

	client, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		log.Fatalf("Failed to connect to mongo: %v", err)
	}

	auditRepository := persistence.NewPairingAuditLogRepository(db.GetDatabase(client, mongoCfg))
	if err := auditRepository.EnsureIndexes(ctx); err != nil {
		logger.Warn(logging.Mongo, logging.Startup, "failed to ensure audit indexes", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	return auditRepository, client
}
