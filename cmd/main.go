package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/mymmrac/telego"
	"golang.org/x/sync/errgroup"

	"agro_desk/internal/config"
	"agro_desk/internal/domain/entity"
	"agro_desk/internal/domain/service/pricing"
	"agro_desk/internal/domain/service/proposal"
	"agro_desk/internal/infrastructure/geo"
	"agro_desk/internal/infrastructure/notifier"
	"agro_desk/internal/infrastructure/persistence"
	"agro_desk/internal/infrastructure/sheets"
	"agro_desk/internal/server"
	"agro_desk/internal/transport/bot"
	"agro_desk/internal/worker"
	"agro_desk/pkg/application/connectors"
	"agro_desk/pkg/application/modules"
	"agro_desk/pkg/logx"
	"agro_desk/pkg/middlewarex"
)

const notificationQueueSize = 100

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(log)

	if err := run(ctx, log); err != nil {
		log.Error("application failed", "error", err)
		os.Exit(1)
	}

	log.Info("application stopped")
}

func run(ctx context.Context, log *slog.Logger) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	// 2. Connectors
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	rd := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rd.Client(ctx)
	defer rd.Close(ctx)

	// 3. Repositories
	appRepo := persistence.NewApplicationRepository(db)
	settingsRepo := persistence.NewSettingsRepository(db)

	// 4. Infrastructure
	ledger, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}

	distance := geo.NewProvider(cfg.Maps, redisClient)
	engine := pricing.NewEngine(distance, ledger)

	// 5. Workers and services
	gate := worker.NewGate()
	delayer := worker.NewRescanDelayer(cfg.Worker.TopicalityRescanDelay)
	notifications := make(chan entity.Notification, notificationQueueSize)

	svc := proposal.NewService(appRepo, settingsRepo, ledger, gate, delayer).
		WithDeleteCooldown(cfg.Worker.DeleteCooldown)

	reconciler := worker.NewReconciler(appRepo, ledger, engine, settingsRepo, gate, notifications).
		WithIntervals(cfg.Worker.CheckInterval, cfg.Worker.PauseCheckInterval)

	topicality := worker.NewTopicalityChecker(appRepo, delayer, notifications).
		WithSchedule(cfg.Worker.TopicalityPeriod, cfg.Worker.TopicalityThreshold)

	// 6. Telegram: общий клиент для уведомлений и команд администратора
	tg, err := telego.NewBot(cfg.Bot.Token)
	if err != nil {
		return fmt.Errorf("telegram bot: %w", err)
	}

	alertBot := notifier.NewTelegramBotFrom(tg)

	adminBot, err := bot.New(cfg, tg, svc, reconciler, gate)
	if err != nil {
		return fmt.Errorf("admin bot: %w", err)
	}

	// 7. HTTP
	masker := logx.NewSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.Server.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.Server.LogFieldMaxLen),
	)
	server.NewServer(server.NewIntakeServer(svc)).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	// 8. Запуск
	g, gCtx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.Server.ShutdownTimeout}.Run(gCtx, g, httpServer)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Server.ProbeAddress,
	}.Run(gCtx, g)
	modules.MetricServer{ListenAddress: cfg.Server.MetricsAddress}.Run(gCtx, g)

	g.Go(func() error {
		if err := alertBot.Run(gCtx, notifications); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("notifier: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := adminBot.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("admin bot: %w", err)
		}
		return nil
	})

	if err := reconciler.Start(gCtx); err != nil {
		return fmt.Errorf("reconciler start: %w", err)
	}
	defer reconciler.Stop()

	if err := topicality.Start(gCtx); err != nil {
		return fmt.Errorf("topicality start: %w", err)
	}
	defer topicality.Stop()

	log.Info("application started",
		slog.String("http", cfg.Server.HTTPAddress),
		slog.Duration("check_interval", cfg.Worker.CheckInterval),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
