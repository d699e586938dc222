package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fitclub/internal/models"
)

// StartReminders раз в сутки напоминает клиентам о завтрашних занятиях.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.tg == nil {
		return
	}

	go func() {
		hour := 9
		if b.config.Bot.ReminderTime != "" {
			var m int
			if _, err := fmt.Sscanf(b.config.Bot.ReminderTime, "%d:%d", &hour, &m); err != nil {
				b.logger.Error().Err(err).Str("reminder_time", b.config.Bot.ReminderTime).Msg("Invalid reminder time format")
				return
			}
		}

		// Ждём ближайшего часа рассылки, дальше тикаем раз в сутки.
		timer := time.NewTimer(timeUntilNextHour(hour))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders(ctx context.Context) {
	// Завтрашняя дата по локальному календарю, выраженная так же,
	// как хранятся даты слотов
	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

	bookings, err := b.bookings.GetBookingsBetween(ctx, tomorrow, tomorrow)
	if err != nil {
		b.logger.Error().Err(err).Time("date", tomorrow).Msg("reminder: get bookings error")
		return
	}

	for _, booking := range bookings {
		if booking.Status != models.BookingStatusConfirmed {
			continue
		}

		user, err := b.users.GetByID(ctx, booking.UserID)
		if err != nil {
			b.logger.Error().Err(err).Int64("user_id", booking.UserID).Msg("reminder: load user error")
			continue
		}
		if !user.HasTelegram() {
			continue
		}
		chatID, err := strconv.ParseInt(user.ExternalID, 10, 64)
		if err != nil {
			continue
		}

		if _, err := b.tg.SendHTML(chatID, formatReminder(booking, user.Language)); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("reminder: send error")
		}
	}
}

func formatReminder(booking *models.Booking, language string) string {
	date := booking.SlotDate.Format("02.01.2006")
	if language == models.LanguageUz {
		return fmt.Sprintf("🔔 Eslatma: ertaga %s soat %s da «%s» mashg'ulotingiz bor.",
			date, booking.SlotStart, booking.ServiceName)
	}
	return fmt.Sprintf("🔔 Напоминание: завтра, %s в %s, у вас занятие «%s».",
		date, booking.SlotStart, booking.ServiceName)
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
