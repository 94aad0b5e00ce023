package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "elitestay/internal/adapters/http_server"
	"elitestay/internal/adapters/observability"
	"elitestay/internal/adapters/places"
	"elitestay/internal/adapters/rabbitmq"
	redisad "elitestay/internal/adapters/redis"
	"elitestay/internal/adapters/tokens"
	"elitestay/internal/app"
	"elitestay/internal/domain"
	"elitestay/internal/shared"
	"elitestay/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// stores
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	store, closeStore, err := storage.Open(startCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store connection failed")
	}
	defer closeStore()

	rc, err := redisad.Connect(startCtx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rc.Close()

	// outbound
	pc, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	iss, err := tokens.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token issuer")
	}

	var publisher domain.BookingPublisher
	if cfg.AMQPURL != "" {
		pub, err := rabbitmq.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq connection failed")
		}
		defer pub.Close()
		publisher = pub
		log.Info().Str("exchange", rabbitmq.Exchange).Msg("booking events enabled")
	}

	// deps
	placeSvc := app.NewPlaceSuggestionService(pc, redisad.NewCache(rc), cfg.CacheTTLSeconds)
	registry := app.NewSessionRegistry(placeSvc)
	repo := app.NewPropertyRepository(store, cfg.StoreTimeout)
	handlers := &server.Handlers{
		Auth:     app.NewAuthService(store, redisad.NewSessions(rc), iss, registry, cfg.SessionIdle),
		Repo:     repo,
		Search:   app.NewSearchService(repo, placeSvc),
		Bookings: app.NewBookingRecorder(store, publisher, cfg.StoreTimeout),
		Sessions: registry,
		Profiles: app.NewProfileService(),
	}
	go pruneSessions(ctx, registry, cfg.SessionIdle)

	// http
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	srv := server.New(origins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// pruneSessions drops process-local session state (shortlists, suggestion
// feeds) once the session has been idle for longer than the timeout.
func pruneSessions(ctx context.Context, reg *app.SessionRegistry, idle time.Duration) {
	if idle <= 0 {
		return
	}
	t := time.NewTicker(idle / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := reg.Prune(idle); n > 0 {
				log.Info().Int("dropped", n).Int("live", reg.Len()).Msg("idle sessions pruned")
			}
			observability.SetLiveSessions(reg.Len())
		}
	}
}
