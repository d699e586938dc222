package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitclub/internal/bot"
	"fitclub/internal/config"
	"fitclub/internal/database"
	"fitclub/internal/events"
	"fitclub/internal/logging"
	"fitclub/internal/metrics"
	"fitclub/internal/models"
	"fitclub/internal/repository"
	"fitclub/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

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

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return fmt.Errorf("init telegram: %w", err)
	}
	botAPI.Debug = cfg.Telegram.Debug

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := initCache(ctx, cfg, &logger)
	bus := events.NewEventBus()

	tg := service.NewTelegramService(bot.NewWrapper(botAPI))
	memberships := service.NewMembershipService(db, bus, &logger)
	bookings := service.NewBookingService(db, memberships, bus, cache, cfg.Booking.MaxAdvanceDays, &logger)
	users := service.NewUserService(db, &logger)

	metrics.Register()

	b := bot.NewBot(tg, users, bookings, cache, cfg, &logger)
	b.StartReminders(ctx)
	b.Start(ctx)

	logger.Info().Msg("Bot stopped")
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
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func initCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *repository.FailoverCacheRepository {
	memory := repository.NewMemoryCacheRepository(models.PendingCountsCacheTTL * time.Second)

	if cfg.Redis.Address == "" {
		return repository.NewFailoverCacheRepository(memory, memory, logger)
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with memory cache")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	redisCache := repository.NewRedisCacheRepository(client, models.PendingCountsCacheTTL*time.Second)
	return repository.NewFailoverCacheRepository(redisCache, memory, logger)
}
