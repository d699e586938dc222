package bot

import (
	"context"
	"os"
	"time"

	"fitclub/internal/config"
	"fitclub/internal/domain"
	"fitclub/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TelegramAPI это часть Telegram-клиента, которой пользуется бот.
// Реализуется service.TelegramService.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendHTML(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// Bot — точка входа клиента: выдаёт кнопку Mini App, принимает контакт
// для привязки телефона и переключает язык. Вся запись и абонементы
// живут в Mini App, бот остаётся тонким шлюзом.
type Bot struct {
	tg       TelegramAPI
	users    domain.UserService
	bookings domain.BookingService
	cache    domain.CacheRepository
	config   *config.Config
	logger   *zerolog.Logger
}

func NewBot(
	tg TelegramAPI,
	users domain.UserService,
	bookings domain.BookingService,
	cache domain.CacheRepository,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Bot {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}
	return &Bot{
		tg:       tg,
		users:    users,
		bookings: bookings,
		cache:    cache,
		config:   cfg,
		logger:   logger,
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tg.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		metrics.ObserveBotUpdate(time.Since(start).Seconds())
	}()

	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		if update.Message != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil {
			userID = update.CallbackQuery.From.ID
		}
		if userID == 0 {
			return
		}

		if !b.allowUpdate(updateCtx, userID, update) {
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallback(updateCtx, update.CallbackQuery)
			return
		}
		if update.Message != nil {
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

// allowUpdate отсекает слишком частые сообщения. Сбой проверки лимита
// не блокирует пользователя.
func (b *Bot) allowUpdate(ctx context.Context, userID int64, update tgbotapi.Update) bool {
	if b.cache == nil || b.config.Bot.RateLimitMessages <= 0 {
		return true
	}

	window := time.Duration(b.config.Bot.RateLimitWindow) * time.Second
	allowed, err := b.cache.CheckRateLimit(ctx, userID, b.config.Bot.RateLimitMessages, window)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
		return true
	}
	if !allowed {
		b.logger.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
		if update.Message != nil {
			_, _ = b.tg.SendHTML(update.Message.Chat.ID, msgRateLimited)
		}
		return false
	}
	return true
}

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}
