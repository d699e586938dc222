package models

// Статусы бронирования (в SQLite нет enum, храним строками)
const (
	BookingStatusPending          = "PENDING"
	BookingStatusConfirmed        = "CONFIRMED"
	BookingStatusCompleted        = "COMPLETED"
	BookingStatusCancelledByUser  = "CANCELLED_BY_USER"
	BookingStatusCancelledByAdmin = "CANCELLED_BY_ADMIN"
)

// Статусы слота
const (
	SlotStatusActive    = "ACTIVE"
	SlotStatusCancelled = "CANCELLED"
)

// Типы тарифов абонементов
const (
	PlanTypeUnlimited = "UNLIMITED"
	PlanTypeVisits    = "VISITS"
)

// Статусы абонемента
const (
	MembershipStatusActive    = "ACTIVE"
	MembershipStatusFrozen    = "FROZEN"
	MembershipStatusExpired   = "EXPIRED"
	MembershipStatusCancelled = "CANCELLED"
)

// Способы оплаты
const (
	PaymentTypeOffline = "OFFLINE"
	PaymentTypeOnline  = "ONLINE"
)

// Статусы заказа бара
const (
	BarOrderStatusPending   = "PENDING"
	BarOrderStatusPreparing = "PREPARING"
	BarOrderStatusReady     = "READY"
	BarOrderStatusCompleted = "COMPLETED"
	BarOrderStatusCancelled = "CANCELLED"
)

// Префиксы синтетических внешних идентификаторов: клиенты, созданные
// вручную администратором и клиенты, известные только по телефону.
const (
	ExternalIDManualPrefix = "manual-"
	ExternalIDPhonePrefix  = "phone-"
)

const (
	LanguageRu = "ru"
	LanguageUz = "uz"
)

const (
	ParseModeHTML     = "HTML"
	ParseModeMarkdown = "Markdown"
)

const (
	// DateFormat формат даты слота в хранилище
	DateFormat = "2006-01-02"

	// TimeFormat формат времени начала/конца слота
	TimeFormat = "15:04"

	// DefaultSlotCapacity вместимость слота по умолчанию
	DefaultSlotCapacity = 1

	// MaxFeedbackCommentLen максимальная длина комментария отзыва
	MaxFeedbackCommentLen = 1000

	// RateLimitMessages количество сообщений бота в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений, в секундах
	RateLimitWindow = 60

	// PendingCountsCacheTTL время жизни кэша счётчиков для админки, в секундах
	PendingCountsCacheTTL = 15
)

// CancelledBookingStatuses статусы, не занимающие место в слоте.
var CancelledBookingStatuses = []string{
	BookingStatusCancelledByUser,
	BookingStatusCancelledByAdmin,
}

// IsActiveBookingStatus сообщает, удерживает ли бронирование место в слоте.
func IsActiveBookingStatus(status string) bool {
	return status == BookingStatusPending || status == BookingStatusConfirmed
}

// IsCancellableBookingStatus сообщает, можно ли отменить бронирование.
func IsCancellableBookingStatus(status string) bool {
	return status == BookingStatusPending || status == BookingStatusConfirmed
}

// IsValidBarOrderStatus проверяет, что статус заказа бара входит в допустимый набор.
func IsValidBarOrderStatus(status string) bool {
	switch status {
	case BarOrderStatusPending, BarOrderStatusPreparing, BarOrderStatusReady,
		BarOrderStatusCompleted, BarOrderStatusCancelled:
		return true
	}
	return false
}
