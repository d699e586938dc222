package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitclub/internal/api"
	"fitclub/internal/bot"
	"fitclub/internal/config"
	"fitclub/internal/database"
	"fitclub/internal/events"
	"fitclub/internal/export"
	"fitclub/internal/logging"
	"fitclub/internal/metrics"
	"fitclub/internal/models"
	"fitclub/internal/notify"
	"fitclub/internal/repository"
	"fitclub/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const pendingCountsTTL = models.PendingCountsCacheTTL * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedAdmin(ctx, db, cfg, &logger); err != nil {
		return err
	}

	cache := initCache(ctx, cfg, &logger)
	bus := events.NewEventBus()

	memberships := service.NewMembershipService(db, bus, &logger)
	bookings := service.NewBookingService(db, memberships, bus, cache, cfg.Booking.MaxAdvanceDays, &logger)
	users := service.NewUserService(db, &logger)
	slots := service.NewSlotService(db, &logger)
	bar := service.NewBarService(db, bus, cache, &logger)
	stats := service.NewStatsService(db, cache, &logger)

	// Уведомления в Telegram идут из того же процесса, что и API:
	// события публикуются синхронно при изменении записей.
	if tg := initTelegram(cfg, &logger); tg != nil {
		notifier := notify.NewNotifier(tg, cfg.Telegram.AdminChatID, &logger)
		notifier.Subscribe(bus)
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	exporter := export.NewExporter(db, cfg.Exports.Path, &logger)
	server := api.NewServer(cfg.API, api.Deps{
		Bookings:    bookings,
		Memberships: memberships,
		Users:       users,
		Slots:       slots,
		Bar:         bar,
		Stats:       stats,
		Repo:        db,
		Auth:        api.NewJWTAuth(db, cfg.Admin),
		Exporter:    exporter,
	}, &logger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("api server stopped")
			stop()
		}
	}()
	logger.Info().Int("port", cfg.API.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// seedAdmin заводит стартового администратора, если он описан в
// конфигурации. Существующая запись не перезаписывается.
func seedAdmin(ctx context.Context, db *database.DB, cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Admin.SeedEmail == "" || cfg.Admin.SeedPassword == "" {
		return nil
	}

	hash, err := api.HashPassword(cfg.Admin.SeedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	if err := db.SeedAdmin(ctx, cfg.Admin.SeedEmail, hash, cfg.Admin.SeedName, models.AdminRoleSuperAdmin); err != nil {
		return err
	}
	logger.Info().Str("email", cfg.Admin.SeedEmail).Msg("admin seeded")
	return nil
}

// initCache собирает кэш с резервом: Redis как основной, память как
// запасной. Без адреса Redis остаётся только память.
func initCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *repository.FailoverCacheRepository {
	memory := repository.NewMemoryCacheRepository(pendingCountsTTL)

	if cfg.Redis.Address == "" {
		return repository.NewFailoverCacheRepository(memory, memory, logger)
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with memory cache")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	redisCache := repository.NewRedisCacheRepository(client, pendingCountsTTL)
	return repository.NewFailoverCacheRepository(redisCache, memory, logger)
}

func initTelegram(cfg *config.Config, logger *zerolog.Logger) *service.TelegramService {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, notifications disabled")
		return nil
	}
	return service.NewTelegramService(bot.NewWrapper(botAPI))
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
