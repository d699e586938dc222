package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackLangRu = "lang:ru"
	callbackLangUz = "lang:uz"
)

// appKeyboard — инлайн-кнопка со ссылкой на Mini App.
func (b *Bot) appKeyboard(language string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(textsFor(language).openApp, b.config.Telegram.WebAppURL),
		),
	)
}

// contactKeyboard просит у клиента его номер телефона.
func contactKeyboard(language string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(textsFor(language).sharePhone),
		),
	)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true
	return keyboard
}

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", callbackLangRu),
			tgbotapi.NewInlineKeyboardButtonData("🇺🇿 O'zbekcha", callbackLangUz),
		),
	)
}
