package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Wrapper доводит *tgbotapi.BotAPI до domain.TelegramSender:
// у библиотеки Self это поле, а не метод.
type Wrapper struct {
	*tgbotapi.BotAPI
}

func NewWrapper(bot *tgbotapi.BotAPI) *Wrapper {
	return &Wrapper{BotAPI: bot}
}

func (w *Wrapper) GetSelf() tgbotapi.User {
	return w.Self
}

func (w *Wrapper) StopReceivingUpdates() {
	w.BotAPI.StopReceivingUpdates()
}
