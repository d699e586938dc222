package notify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fitclub/internal/events"
	"fitclub/internal/metrics"
	"fitclub/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender минимальная поверхность отправки сообщений. Реализуется
// обёрткой service.TelegramService.
type Sender interface {
	SendHTML(chatID int64, text string) (tgbotapi.Message, error)
}

// Notifier слушает шину событий и рассылает уведомления в Telegram:
// клиенту, если его внешний идентификатор — настоящий Telegram ID,
// и администраторам в общий чат. Сбои доставки только логируются,
// бизнес-операции от них не зависят.
type Notifier struct {
	sender      Sender
	adminChatID int64
	logger      *zerolog.Logger
}

func NewNotifier(sender Sender, adminChatID int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, adminChatID: adminChatID, logger: logger}
}

// Subscribe регистрирует обработчики на шине.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBookingEvent)
	bus.Subscribe(events.EventBookingConfirmed, n.handleBookingEvent)
	bus.Subscribe(events.EventBookingCanceled, n.handleBookingEvent)
	bus.Subscribe(events.EventMembershipPurchased, n.handleMembershipEvent)
	bus.Subscribe(events.EventMembershipFrozen, n.handleMembershipEvent)
	bus.Subscribe(events.EventMembershipUnfrozen, n.handleMembershipEvent)
	bus.Subscribe(events.EventBarOrderCreated, n.handleBarOrderEvent)
	bus.Subscribe(events.EventBarOrderStatusChanged, n.handleBarOrderEvent)
	bus.Subscribe(events.EventFeedbackLeft, n.handleFeedbackEvent)
}

func (n *Notifier) handleFeedbackEvent(ev *events.Event) error {
	var p events.FeedbackEventPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		n.logger.Error().Err(err).Str("event", ev.Type).Msg("notify: decode payload")
		return nil
	}

	stars := strings.Repeat("⭐", int(p.Rating))
	text := fmt.Sprintf("📝 Новый отзыв о занятии <b>%s</b>\n%s\n👤 %s", p.ServiceName, stars, p.UserName)
	if p.Comment != "" {
		text += "\n💬 " + p.Comment
	}
	n.deliverAdmin(text)
	return nil
}

func (n *Notifier) handleBookingEvent(ev *events.Event) error {
	var p events.BookingEventPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		n.logger.Error().Err(err).Str("event", ev.Type).Msg("notify: decode payload")
		return nil
	}

	date := p.Date.Format("02.01.2006")
	var userText, adminText string
	switch ev.Type {
	case events.EventBookingCreated:
		userText = fmt.Sprintf(
			"✅ Вы записаны!\n\n<b>%s</b>\n📅 %s в %s\n\nЖдём подтверждения администратора.",
			p.ServiceName, date, p.StartTime)
		adminText = fmt.Sprintf(
			"🆕 Новая запись #%d\n\n<b>%s</b>\n📅 %s в %s\n👤 %s",
			p.BookingID, p.ServiceName, date, p.StartTime, p.UserName)
		if p.Comment != "" {
			adminText += "\n💬 " + p.Comment
		}
	case events.EventBookingConfirmed:
		userText = fmt.Sprintf(
			"👍 Запись подтверждена!\n\n<b>%s</b>\n📅 %s в %s",
			p.ServiceName, date, p.StartTime)
	case events.EventBookingCanceled:
		if p.ChangedBy == "admin" {
			userText = fmt.Sprintf(
				"❌ Запись отменена администратором.\n\n<b>%s</b>\n📅 %s в %s",
				p.ServiceName, date, p.StartTime)
		} else {
			adminText = fmt.Sprintf(
				"❌ Клиент отменил запись #%d\n\n<b>%s</b>\n📅 %s в %s",
				p.BookingID, p.ServiceName, date, p.StartTime)
		}
	}

	n.deliver(p.ExternalID, userText)
	n.deliverAdmin(adminText)
	return nil
}

func (n *Notifier) handleMembershipEvent(ev *events.Event) error {
	var p events.MembershipEventPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		n.logger.Error().Err(err).Str("event", ev.Type).Msg("notify: decode payload")
		return nil
	}

	var userText, adminText string
	switch ev.Type {
	case events.EventMembershipPurchased:
		userText = fmt.Sprintf(
			"🎫 Абонемент <b>%s</b> оформлен!\nДействует до %s.",
			p.PlanName, p.EndDate.Format("02.01.2006"))
		adminText = fmt.Sprintf("🎫 Оформлен абонемент «%s», действует до %s",
			p.PlanName, p.EndDate.Format("02.01.2006"))
	case events.EventMembershipFrozen:
		userText = "❄️ Абонемент заморожен. Разморозьте его, когда будете готовы вернуться."
	case events.EventMembershipUnfrozen:
		userText = fmt.Sprintf(
			"☀️ Абонемент разморожен, срок продлён на %d дн.\nТеперь действует до %s.",
			p.DaysFrozen, p.EndDate.Format("02.01.2006"))
	}

	n.deliver(p.ExternalID, userText)
	n.deliverAdmin(adminText)
	return nil
}

func (n *Notifier) handleBarOrderEvent(ev *events.Event) error {
	var p events.BarOrderEventPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		n.logger.Error().Err(err).Str("event", ev.Type).Msg("notify: decode payload")
		return nil
	}

	var userText, adminText string
	switch ev.Type {
	case events.EventBarOrderCreated:
		adminText = fmt.Sprintf("🥤 Новый заказ бара #%d на %d сум", p.OrderID, p.Total)
	case events.EventBarOrderStatusChanged:
		switch p.Status {
		case models.BarOrderStatusReady:
			userText = fmt.Sprintf("🥤 Заказ #%d готов, забирайте на баре!", p.OrderID)
		case models.BarOrderStatusCancelled:
			userText = fmt.Sprintf("❌ Заказ #%d отменён.", p.OrderID)
		}
	}

	n.deliver(p.ExternalID, userText)
	n.deliverAdmin(adminText)
	return nil
}

// deliver шлёт сообщение клиенту. Записям "manual-"/"phone-" слать
// некуда: их внешний идентификатор не парсится как Telegram ID.
func (n *Notifier) deliver(externalID, text string) {
	if text == "" {
		return
	}
	chatID, err := strconv.ParseInt(externalID, 10, 64)
	if err != nil {
		return
	}
	if _, err := n.sender.SendHTML(chatID, text); err != nil {
		metrics.IncNotification("error")
		n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("notify: send to user")
		return
	}
	metrics.IncNotification("ok")
}

func (n *Notifier) deliverAdmin(text string) {
	if text == "" || n.adminChatID == 0 {
		return
	}
	if _, err := n.sender.SendHTML(n.adminChatID, text); err != nil {
		metrics.IncNotification("error")
		n.logger.Error().Err(err).Int64("chat_id", n.adminChatID).Msg("notify: send to admin chat")
		return
	}
	metrics.IncNotification("ok")
}
