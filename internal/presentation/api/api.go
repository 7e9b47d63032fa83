package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pdoodle/pairing/internal/infrastructure/auth"
	"github.com/pdoodle/pairing/internal/infrastructure/configs"
	"github.com/pdoodle/pairing/internal/infrastructure/logging"
	"github.com/pdoodle/pairing/internal/infrastructure/metrics"
	"github.com/pdoodle/pairing/internal/infrastructure/ratelimiter"
	healthHandler "github.com/pdoodle/pairing/internal/presentation/handler/health"
	pairingHandler "github.com/pdoodle/pairing/internal/presentation/handler/pairing"
	tokenHandler "github.com/pdoodle/pairing/internal/presentation/handler/token"
)

type Application struct {
	config         configs.Config
	pairingHandler *pairingHandler.Handler
	healthHandler  *healthHandler.Handler
	tokenHandler   *tokenHandler.Handler
	verifier       *auth.Verifier
	metrics        *metrics.Metrics
	logger         logging.Logger
	ratelimiter    ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	pairingHandler *pairingHandler.Handler,
	healthHandler *healthHandler.Handler,
	tokenHandler *tokenHandler.Handler,
	verifier *auth.Verifier,
	metrics *metrics.Metrics,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:         config,
		pairingHandler: pairingHandler,
		healthHandler:  healthHandler,
		tokenHandler:   tokenHandler,
		verifier:       verifier,
		metrics:        metrics,
		logger:         logger,
		ratelimiter:    ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)
	r.Use(app.loggerMiddleware)
	r.Use(app.prometheusMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/room", func(r chi.Router) {
			r.Use(app.authMiddleware)

			r.Post("/create", app.pairingHandler.CreateRoomHandler)
			r.Post("/join", app.pairingHandler.JoinRoomHandler)
			r.Get("/status", app.pairingHandler.StatusHandler)
			r.Post("/leave", app.pairingHandler.LeaveRoomHandler)
		})

		if app.config.Auth.DevTokens {
			r.Post("/auth/token", app.tokenHandler.IssueTokenHandler)
		}

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Handle("/metrics", app.metrics.Handler())

	return otelhttp.NewHandler(r, "pairing-api")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Startup, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		healthHandler.SetHealthy(false)

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Startup, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
