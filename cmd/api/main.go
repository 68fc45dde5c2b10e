package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-gateway/internal/api/http"
	"github.com/spec-kit/helpdesk-gateway/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-gateway/internal/audit"
	"github.com/spec-kit/helpdesk-gateway/internal/config"
	"github.com/spec-kit/helpdesk-gateway/internal/events"
	"github.com/spec-kit/helpdesk-gateway/internal/observability"
	"github.com/spec-kit/helpdesk-gateway/internal/persistence"
	"github.com/spec-kit/helpdesk-gateway/internal/redmine"
	"github.com/spec-kit/helpdesk-gateway/internal/service"
	"github.com/spec-kit/helpdesk-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Upstream.BaseURL == "" || cfg.Upstream.APIKey == "" {
		logger.Warn("REDMINE_BASE_URL or REDMINE_API_KEY not set; upstream calls will fail closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Audit, logger)
	if err != nil {
		logger.Fatal("failed to connect audit postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	sinks := []worker.AuditSink{audit.NewZapSink(logger)}
	if pool := pg.PoolHandle(); pool != nil {
		pgSink := audit.NewPostgresSink(pool, logger)
		if err := pgSink.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to ensure audit schema", zap.Error(err))
		}
		sinks = append(sinks, pgSink)
	}
	worker.StartAuditWorker(dispatcher, sinks...)

	client := redmine.NewClient(cfg.Upstream, logger, metrics)

	ticketService := service.NewTicketService(cfg.Upstream, cfg.Features, service.TicketDependencies{
		Upstream: client,
		Recorder: audit.NewRecorder(dispatcher),
		Logger:   logger,
		Metrics:  metrics,
	})
	catalogService := service.NewCatalogService(client, redis.Handle(), cfg.Cache.TTL(), logger)

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		// Room for the form fields plus a full set of maximum-size attachments.
		BodyLimit: int(cfg.Attachments.MaxSizeBytes)*cfg.Attachments.MaxCount + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, *cfg)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version),
		Catalog: handlers.NewCatalogHandler(catalogService, cfg.Features),
		Tickets: handlers.NewTicketsHandler(ticketService, catalogService, cfg.Attachments, logger),
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
