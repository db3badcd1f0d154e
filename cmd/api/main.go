package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/servicedesk-io/servicedesk/internal/api/http"
	"github.com/servicedesk-io/servicedesk/internal/api/http/handlers"
	"github.com/servicedesk-io/servicedesk/internal/auth"
	"github.com/servicedesk-io/servicedesk/internal/config"
	"github.com/servicedesk-io/servicedesk/internal/events"
	"github.com/servicedesk-io/servicedesk/internal/observability"
	"github.com/servicedesk-io/servicedesk/internal/persistence"
	"github.com/servicedesk-io/servicedesk/internal/repository"
	"github.com/servicedesk-io/servicedesk/internal/service"
	"github.com/servicedesk-io/servicedesk/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		CommentRepo:  commentRepo,
		CategoryRepo: categoryRepo,
		Dispatcher:   dispatcher,
	})
	commentService := service.NewCommentService(commentRepo, ticketRepo, dispatcher)
	reportService := service.NewReportService(statsRepo, redis.Client, cfg.Reports, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, commentService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Reports:        handlers.NewReportsHandler(reportService),
		Categories:     handlers.NewCategoriesHandler(categoryRepo),
		AuthMiddleware: authMiddleware,
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
