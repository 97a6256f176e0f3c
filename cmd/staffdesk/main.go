package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/admiral-Gal-Arch/galactic-support-portal/internal/api/http"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/api/http/handlers"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/auth"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/cache"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/config"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/directory"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/events"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/observability"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/persistence"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/repository"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/service"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, "staffdesk")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Staff.Validate(); err != nil {
		logger.Fatal("staff cookie configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	staffRepo := repository.NewStaffRepository(pool)
	publicRepo := repository.NewPublicUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	cacheClient := cache.New(redis.Client)
	dispatcher := events.NewInMemoryDispatcher()

	dir := directory.New(directory.Dependencies{
		StaffRepo:  staffRepo,
		PublicRepo: publicRepo,
		Cache:      cacheClient,
		TTL:        cfg.Cache.DirectoryTTL(),
		BcryptCost: cfg.Auth.BcryptCost,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	staffAccounts, err := dir.FetchAll(ctx, domain.RoleStaff)
	if err != nil {
		logger.Fatal("failed to fetch staff directory", zap.Error(err))
	}
	if len(staffAccounts) == 0 {
		logger.Fatal("no staff users found in the directory; provision at least one")
	}

	queueService := service.NewQueueService(ticketRepo, cacheClient, cfg.Cache.QueueTTL(), cfg.Queue.PageSize)
	ticketService := service.NewTicketService(ticketRepo, dispatcher)
	subscribeCacheInvalidation(dispatcher, queueService, dir, logger)

	sessions, err := auth.NewSessionManager(cfg.Staff)
	if err != nil {
		logger.Fatal("failed to init session manager", zap.Error(err))
	}
	registry := session.NewRegistry()

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterStaffRoutes(app, httptransport.StaffRouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name+"-staffdesk", cfg.App.Version, pg, redis),
		Session:   handlers.NewSessionHandler(dir, sessions, registry, domain.RoleStaff),
		Dashboard: handlers.NewDashboardHandler(ticketService, queueService, dir),
		Guard:     auth.RequireSession(sessions, registry),
	})

	go func() {
		if err := app.Listen(cfg.Staff.Addr(cfg.App.Host)); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// subscribeCacheInvalidation wires the synchronous write-through
// invalidation: every ticket write drops the queue cache and every
// registration drops the public directory listing before the triggering
// call returns.
func subscribeCacheInvalidation(dispatcher events.Dispatcher, queue *service.QueueService, dir *directory.Directory, logger *zap.Logger) {
	invalidateQueue := func(ctx context.Context, event events.Event) error {
		return queue.Invalidate(ctx)
	}
	dispatcher.Subscribe(events.EventTicketCreated, invalidateQueue)
	dispatcher.Subscribe(events.EventTicketUpdated, invalidateQueue)
	dispatcher.Subscribe(events.EventUserRegistered, func(ctx context.Context, event events.Event) error {
		return dir.InvalidatePublic(ctx)
	})
	dispatcher.Subscribe(events.EventTicketUpdated, func(_ context.Context, event events.Event) error {
		logger.Info("ticket updated", zap.String("actor", event.Actor), zap.Any("payload", event.Payload))
		return nil
	})
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
