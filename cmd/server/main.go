package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/digiplanner/backend/api/handler"
	"github.com/digiplanner/backend/internal/config"
	"github.com/digiplanner/backend/internal/infrastructure/localstore"
	"github.com/digiplanner/backend/internal/infrastructure/monitor"
	pgInfra "github.com/digiplanner/backend/internal/infrastructure/postgres"
	"github.com/digiplanner/backend/internal/infrastructure/remote"
	"github.com/digiplanner/backend/internal/middleware"
	"github.com/digiplanner/backend/internal/outbox"
	"github.com/digiplanner/backend/internal/router"
	"github.com/digiplanner/backend/internal/services"
	"github.com/digiplanner/backend/internal/services/lifecycle"
	"github.com/digiplanner/backend/internal/storage"
	"github.com/digiplanner/backend/pkg/httpcontext"
	"github.com/digiplanner/backend/pkg/logger"
	"github.com/digiplanner/backend/repository"
	pgRepo "github.com/digiplanner/backend/repository/postgres"
	analyticsUC "github.com/digiplanner/backend/usecase/analytics"
	notesUC "github.com/digiplanner/backend/usecase/notes"
	taskUC "github.com/digiplanner/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store := openStore(appCtx, cfg, manager, zapLogger)

	var remoteClient *remote.Client
	if cfg.RemoteConfigured() {
		remoteClient = remote.NewClient(remote.Config{
			BaseURL:      cfg.Remote.BaseURL,
			Timeout:      cfg.Remote.Timeout,
			ProbeTimeout: cfg.Remote.ProbeTimeout,
			Token:        cfg.Remote.Token,
		})
		zapLogger.Info("upstream backend configured", zap.String("base_url", cfg.Remote.BaseURL))
	}

	queue, err := outbox.Open(cfg.Outbox.Path)
	if err != nil {
		zapLogger.Fatal("failed to open outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return queue.Close()
	})

	mon := monitor.New(remoteClient, queue, cfg.Remote.ProbeInterval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var sink storage.Sink
	var gatewayRemote storage.Remote
	if remoteClient != nil {
		processor := services.NewSyncProcessor(queue, mon, remoteClient, zapLogger, services.ProcessorConfig{
			Interval:   cfg.Outbox.SyncInterval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetry,
			Retention:  cfg.Outbox.Retention,
		})
		processor.Start()
		manager.Register("sync_processor", func(ctx context.Context) error {
			processor.Stop(ctx)
			return nil
		})
		sink = processor
		gatewayRemote = remoteClient
	}

	gateway := storage.NewGateway(store, gatewayRemote, sink, zapLogger)

	taskService := taskUC.New(gateway, zapLogger, taskUC.WithDueSoonLimit(cfg.Planner.DueSoonLimit))
	analyticsService := analyticsUC.New(gateway, zapLogger)
	notesService := notesUC.New(gateway, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskService, cfg.Planner.DueSoonDays, ctxAdapter, zapLogger),
		Stats:  apiHandler.NewStatsHandler(taskService, analyticsService, cfg.Planner.TrendDays, cfg.Planner.TrendWeeks, ctxAdapter, zapLogger),
		Notes:  apiHandler.NewNotesHandler(notesService, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(cfg.Auth.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStore selects the local system of record: embedded bolt by default,
// postgres when STORE_BACKEND=postgres.
func openStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) repository.Store {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		return pgRepo.New(pool)

	default:
		store, err := localstore.Open(cfg.Store.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open local store", zap.Error(err))
		}
		manager.Register("local_store", func(ctx context.Context) error {
			return store.Close()
		})
		return store
	}
}
