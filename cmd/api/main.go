package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-router/internal/api/http"
	"github.com/spec-kit/support-router/internal/api/http/handlers"
	"github.com/spec-kit/support-router/internal/config"
	"github.com/spec-kit/support-router/internal/notify"
	"github.com/spec-kit/support-router/internal/observability"
	"github.com/spec-kit/support-router/internal/persistence"
	"github.com/spec-kit/support-router/internal/repository"
	"github.com/spec-kit/support-router/internal/service"
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

	notifier := buildNotifier(cfg.Rabbit, logger)
	defer notifier.Close() //nolint:errcheck

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	itemRepo := repository.NewItemRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	routing := service.NewRoutingService(service.RoutingDependencies{
		ItemRepo:   itemRepo,
		AgentRepo:  agentRepo,
		AuditRepo:  auditRepo,
		Workload:   service.NewWorkloadIndex(itemRepo),
		Classifier: service.NewSkillClassifier(service.DefaultClassifierRules()),
		Logger:     logger,
		Metrics:    metrics,
	})
	escalation := service.NewEscalationService(service.EscalationDependencies{
		ItemRepo:  itemRepo,
		AgentRepo: agentRepo,
		AuditRepo: auditRepo,
		Notifier:  notifier,
		Calendar:  service.NewWindowCalendar(cfg.Escalation.WindowStart, cfg.Escalation.WindowEnd),
		Lock:      service.NewRedisRunLock(redis.Client, cfg.Escalation.LockKey, cfg.Escalation.LockTTL()),
		Config:    cfg.Escalation,
		Logger:    logger,
		Metrics:   metrics,
	})
	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		ItemRepo:  itemRepo,
		AuditRepo: auditRepo,
		Routing:   routing,
		Notifier:  notifier,
		Config:    cfg.Lifecycle,
		Logger:    logger,
		Metrics:   metrics,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	itemsHandler := handlers.NewItemsHandler(lifecycle)
	escalationsHandler := handlers.NewEscalationsHandler(escalation)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      healthHandler,
		Items:       itemsHandler,
		Escalations: escalationsHandler,
	})

	go runEscalationLoop(ctx, escalation, cfg.Escalation.Cadence(), logger)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func buildNotifier(cfg config.RabbitConfig, logger *zap.Logger) notify.Notifier {
	if cfg.URL == "" {
		logger.Warn("RABBIT_URL not provided; using fallback notifier")
		return notify.NewFallback(logger)
	}
	notifier, err := notify.NewAMQP(cfg.URL, cfg.Exchange, logger)
	if err != nil {
		logger.Warn("unable to reach rabbitmq; using fallback notifier", zap.Error(err))
		return notify.NewFallback(logger)
	}
	return notifier
}

// runEscalationLoop invokes the scheduled escalation batch at a fixed
// cadence until the context is cancelled.
func runEscalationLoop(ctx context.Context, escalation *service.EscalationService, cadence time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := escalation.RunBatch(ctx); err != nil {
				logger.Error("scheduled escalation run failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
