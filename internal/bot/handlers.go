package bot

import (
	"context"
	"fmt"
	"strings"

	"fitclub/internal/metrics"
	"fitclub/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	logger := zerolog.Ctx(ctx)

	user, err := b.users.FindOrCreateByTelegram(ctx,
		msg.From.ID, msg.From.UserName, msg.From.FirstName, msg.From.LastName, msg.From.LanguageCode)
	if err != nil {
		logger.Error().Err(err).Int64("telegram_id", msg.From.ID).Msg("Failed to resolve user")
		return
	}

	if msg.Contact != nil {
		metrics.IncBotUpdate("contact")
		b.handleContact(ctx, msg, user)
		return
	}

	if msg.IsCommand() {
		metrics.IncBotUpdate("command")
		switch msg.Command() {
		case "start":
			b.handleStart(msg.Chat.ID, user)
		case "mybookings":
			b.handleMyBookings(ctx, msg.Chat.ID, user)
		case "language":
			_, _ = b.tg.SendWithInlineKeyboard(msg.Chat.ID, textsFor(user.Language).chooseLanguage, languageKeyboard())
		case "contacts":
			text := b.config.Bot.Contacts.Resolve(user.Language)
			if text == "" {
				text = textsFor(user.Language).help
			}
			b.sendWithApp(msg.Chat.ID, text, user.Language)
		case "help":
			b.sendWithApp(msg.Chat.ID, textsFor(user.Language).help, user.Language)
		default:
			b.sendWithApp(msg.Chat.ID, textsFor(user.Language).unknown, user.Language)
		}
		return
	}

	metrics.IncBotUpdate("message")
	b.sendWithApp(msg.Chat.ID, textsFor(user.Language).unknown, user.Language)
}

func (b *Bot) handleStart(chatID int64, user *models.User) {
	t := textsFor(user.Language)

	name := strings.TrimSpace(user.FirstName)
	if name == "" {
		name = user.Username
	}
	b.sendWithApp(chatID, fmt.Sprintf(t.welcome, name), user.Language)

	if user.Phone == "" {
		_, _ = b.tg.SendWithKeyboard(chatID, t.askContact, contactKeyboard(user.Language))
	}
}

// handleContact привязывает телефон. Чужой контакт не принимаем —
// телефон должен принадлежать самому клиенту.
func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	t := textsFor(user.Language)

	if msg.Contact.UserID != msg.From.ID {
		_, _ = b.tg.SendHTML(msg.Chat.ID, t.foreignContact)
		return
	}

	if err := b.users.UpdatePhone(ctx, user.ExternalID, msg.Contact.PhoneNumber); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", user.ID).Msg("Failed to save phone")
		return
	}

	remove := tgbotapi.NewMessage(msg.Chat.ID, t.phoneSaved)
	remove.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, _ = b.tg.Send(remove)
}

func (b *Bot) handleMyBookings(ctx context.Context, chatID int64, user *models.User) {
	bookings, err := b.bookings.GetUserBookings(ctx, user.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list bookings")
		return
	}

	active := bookings[:0]
	for _, booking := range bookings {
		if models.IsActiveBookingStatus(booking.Status) {
			active = append(active, booking)
		}
	}

	if len(active) == 0 {
		b.sendWithApp(chatID, textsFor(user.Language).noBookings, user.Language)
		return
	}
	_, _ = b.tg.SendHTML(chatID, formatBookings(active, user.Language))
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	metrics.IncBotUpdate("callback")

	user, err := b.users.FindOrCreateByTelegram(ctx,
		query.From.ID, query.From.UserName, query.From.FirstName, query.From.LastName, query.From.LanguageCode)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("telegram_id", query.From.ID).Msg("Failed to resolve user")
		return
	}

	var language string
	switch query.Data {
	case callbackLangRu:
		language = models.LanguageRu
	case callbackLangUz:
		language = models.LanguageUz
	default:
		_ = b.tg.AnswerCallback(query.ID, "")
		return
	}

	if err := b.users.UpdateLanguage(ctx, user.ExternalID, language); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", user.ID).Msg("Failed to update language")
		_ = b.tg.AnswerCallback(query.ID, "")
		return
	}

	_ = b.tg.AnswerCallback(query.ID, "")
	if query.Message != nil {
		b.sendWithApp(query.Message.Chat.ID, textsFor(language).languageSet, language)
	}
}

func (b *Bot) sendWithApp(chatID int64, text, language string) {
	if _, err := b.tg.SendWithInlineKeyboard(chatID, text, b.appKeyboard(language)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
