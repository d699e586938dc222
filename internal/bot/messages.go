package bot

import (
	"fmt"
	"strings"

	"fitclub/internal/models"
)

const msgRateLimited = "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного."

type texts struct {
	welcome        string
	openApp        string
	sharePhone     string
	askContact     string
	phoneSaved     string
	foreignContact string
	chooseLanguage string
	languageSet    string
	noBookings     string
	bookingsHeader string
	help           string
	unknown        string
}

var textsRu = texts{
	welcome:        "Здравствуйте, %s! 👋\nЗапись на тренировки, абонементы и фитнес-бар — в приложении клуба.",
	openApp:        "🏋️ Открыть приложение",
	sharePhone:     "📱 Отправить телефон",
	askContact:     "Чтобы администратор мог с вами связаться, поделитесь номером телефона.",
	phoneSaved:     "Телефон сохранён ✅",
	foreignContact: "Пожалуйста, отправьте свой собственный контакт.",
	chooseLanguage: "Выберите язык:",
	languageSet:    "Язык переключён на русский 🇷🇺",
	noBookings:     "У вас пока нет записей. Записаться можно в приложении клуба.",
	bookingsHeader: "Ваши записи:",
	help: "Бот клуба:\n" +
		"/start — открыть приложение\n" +
		"/mybookings — мои записи\n" +
		"/contacts — адрес и контакты\n" +
		"/language — сменить язык",
	unknown: "Не понимаю 🤔 Запись и абонементы — в приложении клуба, кнопка ниже.",
}

var textsUz = texts{
	welcome:        "Assalomu alaykum, %s! 👋\nMashg'ulotlarga yozilish, abonementlar va fitnes-bar — klub ilovasida.",
	openApp:        "🏋️ Ilovani ochish",
	sharePhone:     "📱 Telefon raqamini yuborish",
	askContact:     "Administrator siz bilan bog'lana olishi uchun telefon raqamingizni yuboring.",
	phoneSaved:     "Telefon saqlandi ✅",
	foreignContact: "Iltimos, o'zingizning kontaktingizni yuboring.",
	chooseLanguage: "Tilni tanlang:",
	languageSet:    "Til o'zbekchaga o'zgartirildi 🇺🇿",
	noBookings:     "Sizda hali yozuvlar yo'q. Klub ilovasida yozilishingiz mumkin.",
	bookingsHeader: "Sizning yozuvlaringiz:",
	help: "Klub boti:\n" +
		"/start — ilovani ochish\n" +
		"/mybookings — mening yozuvlarim\n" +
		"/contacts — manzil va kontaktlar\n" +
		"/language — tilni almashtirish",
	unknown: "Tushunmadim 🤔 Yozilish va abonementlar — klub ilovasida, pastdagi tugma.",
}

func textsFor(language string) texts {
	if language == models.LanguageUz {
		return textsUz
	}
	return textsRu
}

var bookingStatusRu = map[string]string{
	models.BookingStatusPending:   "ожидает подтверждения",
	models.BookingStatusConfirmed: "подтверждена",
}

var bookingStatusUz = map[string]string{
	models.BookingStatusPending:   "tasdiqlanishini kutmoqda",
	models.BookingStatusConfirmed: "tasdiqlangan",
}

// formatBookings собирает список активных записей для /mybookings.
func formatBookings(bookings []*models.Booking, language string) string {
	statuses := bookingStatusRu
	if language == models.LanguageUz {
		statuses = bookingStatusUz
	}

	var sb strings.Builder
	sb.WriteString(textsFor(language).bookingsHeader)
	for _, booking := range bookings {
		sb.WriteString(fmt.Sprintf("\n\n📅 <b>%s</b> %s–%s\n%s (%s)",
			booking.SlotDate.Format("02.01.2006"),
			booking.SlotStart, booking.SlotEnd,
			booking.ServiceName,
			statuses[booking.Status],
		))
	}
	return sb.String()
}
