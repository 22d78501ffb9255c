package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/api"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
	"github.com/MahathirML/CareNeighbour/internal/core/service"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/config"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/db/memory"
	mongodb "github.com/MahathirML/CareNeighbour/internal/infrastructure/db/mongo"
	redisdb "github.com/MahathirML/CareNeighbour/internal/infrastructure/db/redis"
	apphttp "github.com/MahathirML/CareNeighbour/internal/infrastructure/http"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/http/handlers"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/nlp"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/queue"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/ws"
	"github.com/MahathirML/CareNeighbour/pkg/logger"
)

const devJWTSecret = "careneighbour-dev-secret"

// @title                       CareNeighbour API
// @version                     1.0
// @description                 Matches care seekers with nearby providers.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	base := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel))
	log := logger.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, base); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

// stores is the set of repositories selected by STORE_DRIVER.
type stores struct {
	users    ports.UserRepository
	requests ports.CareRequestRepository
	statuses ports.ProviderStatusRepository
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	readiness := map[string]handlers.Pinger{}

	st, closeStore, err := openStores(ctx, cfg, log, readiness)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := ws.NewRegistry(log)
	var notifier ports.Notifier = registry

	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		fanout := redisdb.NewFanout(rdb, cfg.Redis.Channel, registry, log)
		go fanout.Run(ctx)
		notifier = fanout
		readiness["redis"] = handlers.RedisPinger(rdb)
	}

	authService := service.NewAuthService(st.users, cfg.JWTSecret, cfg.TokenTTL, log)
	requestService := service.NewRequestService(st.requests, st.users, nlp.NewKeywordAnalyzer(), notifier, log)
	providerService := service.NewProviderService(st.statuses, st.users, st.requests, notifier, log)

	dispatcher := queue.NewDispatcher(cfg.Dispatch.Workers, providerService, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		JWTSecret:       cfg.JWTSecret,
		Log:             log,
		Users:           st.users,
		AuthService:     authService,
		RequestService:  requestService,
		ProviderService: providerService,
		Registry:        registry,
		Signals:         dispatcher,
		WS: ws.ClientConfig{
			SendBuffer:      cfg.WS.SendBuffer,
			WriteTimeout:    cfg.WS.WriteTimeout,
			PingInterval:    cfg.WS.PingInterval,
			MaxMessageBytes: cfg.WS.MaxMessageBytes,
		},
		Readiness: readiness,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("store", cfg.StoreDriver).
		Bool("redis", cfg.Redis.Enabled).
		Int("dispatch_workers", cfg.Dispatch.Workers).
		Msg("starting careneighbour")

	server := apphttp.NewServer(":"+cfg.Port, e, log)
	server.OnShutdown(registry.CloseAll)
	return server.Run(ctx)
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger, readiness map[string]handlers.Pinger) (stores, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return stores{}, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}

		store := mongodb.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return stores{}, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		readiness["mongodb"] = handlers.MongoPinger(db)

		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo store")
		return stores{users: store.Users, requests: store.CareRequests, statuses: store.ProviderStatus}, closeFn, nil

	default:
		log.Info().Msg("using in-memory store")
		return stores{
			users:    memory.NewUserRepository(),
			requests: memory.NewCareRequestRepository(),
			statuses: memory.NewProviderStatusRepository(),
		}, func() {}, nil
	}
}
