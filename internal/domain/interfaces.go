package domain

import (
	"context"
	"time"

	"fitclub/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository покрывает всё хранилище клуба. Сервисный слой зависит от
// интерфейса, а не от конкретной SQLite-реализации.
type Repository interface {
	// Клиенты
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, firstName, lastName, username string) error
	UpdateUserPhone(ctx context.Context, externalID, phone string) error
	UpdateUserLanguage(ctx context.Context, externalID, language string) error
	SearchUsers(ctx context.Context, search string) ([]*models.User, error)
	UsersWithPhone(ctx context.Context) ([]*models.User, error)
	MergeUserGroup(ctx context.Context, keepID int64, duplicateIDs []int64, normalizedPhone string) error

	// Каталог услуг
	CreateServiceCategory(ctx context.Context, c *models.ServiceCategory) error
	ListServiceCategories(ctx context.Context, activeOnly bool) ([]*models.ServiceCategory, error)
	CreateService(ctx context.Context, s *models.Service) error
	GetService(ctx context.Context, id int64) (*models.Service, error)
	ListServices(ctx context.Context, categoryID int64, activeOnly bool) ([]*models.Service, error)
	UpdateService(ctx context.Context, s *models.Service) error

	// Слоты
	CreateSlot(ctx context.Context, slot *models.Slot) error
	CreateSlots(ctx context.Context, slots []*models.Slot) (int, error)
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
	ListSlots(ctx context.Context, date *time.Time, serviceID int64) ([]*models.Slot, error)
	UpdateSlot(ctx context.Context, id int64, specialist *string, capacity *int64, status *string) error
	DeleteSlot(ctx context.Context, id int64) error

	// Бронирования
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CancelBooking(ctx context.Context, id int64, cancelStatus string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, from, to string) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	ListBookingsByStatus(ctx context.Context, status string) ([]*models.Booking, error)
	ListBookingsByDate(ctx context.Context, date time.Time) ([]*models.Booking, error)
	ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error)

	// Абонементы
	CreateMembershipPlan(ctx context.Context, plan *models.MembershipPlan) error
	GetMembershipPlan(ctx context.Context, id int64) (*models.MembershipPlan, error)
	ListMembershipPlans(ctx context.Context, activeOnly bool) ([]*models.MembershipPlan, error)
	UpdateMembershipPlan(ctx context.Context, plan *models.MembershipPlan) error
	CreateUserMembership(ctx context.Context, m *models.UserMembership) error
	GetUserMembership(ctx context.Context, id int64) (*models.UserMembership, error)
	ExpireStaleMemberships(ctx context.Context) error
	CurrentMembership(ctx context.Context, userID int64) (*models.UserMembership, error)
	ListUserMemberships(ctx context.Context, userID int64) ([]*models.UserMembership, error)
	UpdateMembershipStatus(ctx context.Context, id int64, status string) error
	FreezeMembership(ctx context.Context, membershipID int64) (*models.MembershipFreeze, error)
	UnfreezeMembership(ctx context.Context, membershipID int64) (int64, error)
	DecrementVisit(ctx context.Context, membershipID int64) error
	ListMembershipFreezes(ctx context.Context, membershipID int64) ([]*models.MembershipFreeze, error)

	// Фитнес-бар
	CreateBarCategory(ctx context.Context, c *models.BarCategory) error
	ListBarCategories(ctx context.Context, activeOnly bool) ([]*models.BarCategory, error)
	CreateBarItem(ctx context.Context, item *models.BarItem) error
	GetBarItem(ctx context.Context, id int64) (*models.BarItem, error)
	ListBarItems(ctx context.Context, categoryID int64, availableOnly bool) ([]*models.BarItem, error)
	UpdateBarItem(ctx context.Context, item *models.BarItem) error
	CreateBarOrder(ctx context.Context, userID int64, lines []models.OrderLine) (*models.BarOrder, error)
	GetBarOrder(ctx context.Context, id int64) (*models.BarOrder, error)
	ListUserBarOrders(ctx context.Context, userID int64) ([]*models.BarOrder, error)
	ListBarOrdersByStatus(ctx context.Context, status string) ([]*models.BarOrder, error)
	UpdateBarOrderStatus(ctx context.Context, id int64, status string) error

	// Отзывы
	CreateFeedback(ctx context.Context, feedback *models.SessionFeedback) error
	ListFeedback(ctx context.Context, limit int64) ([]*models.SessionFeedback, error)

	// Администраторы и сводки
	GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	GetAdminByID(ctx context.Context, id int64) (*models.AdminUser, error)
	SeedAdmin(ctx context.Context, email, passwordHash, name, role string) error
	SetAdminActive(ctx context.Context, id int64, active bool) error
	GetPendingCounts(ctx context.Context) (*models.PendingCounts, error)
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// CacheRepository кэш поверх Redis с резервом в памяти: счётчики для
// поллинга админки и ограничение частоты сообщений бота.
type CacheRepository interface {
	GetPendingCounts(ctx context.Context) (*models.PendingCounts, error)
	SetPendingCounts(ctx context.Context, counts *models.PendingCounts) error
	InvalidatePendingCounts(ctx context.Context) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID, slotID int64, comment string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64, byAdmin bool) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID int64) error
	CompleteBooking(ctx context.Context, bookingID int64) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetBookingsByStatus(ctx context.Context, status string) ([]*models.Booking, error)
	GetBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	LeaveFeedback(ctx context.Context, userID, bookingID, rating int64, comment string) error
}

type MembershipService interface {
	GetPlans(ctx context.Context, activeOnly bool) ([]*models.MembershipPlan, error)
	CreatePlan(ctx context.Context, plan *models.MembershipPlan) error
	UpdatePlan(ctx context.Context, plan *models.MembershipPlan) error
	Purchase(ctx context.Context, userID, planID int64, paymentType string) (*models.UserMembership, error)
	GetCurrent(ctx context.Context, userID int64) (*models.UserMembership, error)
	GetHistory(ctx context.Context, userID int64) ([]*models.UserMembership, error)
	Freeze(ctx context.Context, membershipID int64) (*models.MembershipFreeze, error)
	Unfreeze(ctx context.Context, membershipID int64) (int64, error)
	CoversService(ctx context.Context, userID, serviceID int64) (*models.UserMembership, bool, error)
}

type UserService interface {
	FindOrCreateByTelegram(ctx context.Context, telegramID int64, username, firstName, lastName, language string) (*models.User, error)
	FindOrCreateByPhone(ctx context.Context, phone, firstName, lastName string) (*models.User, error)
	CreateManual(ctx context.Context, firstName, lastName, phone string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePhone(ctx context.Context, externalID, phone string) error
	UpdateLanguage(ctx context.Context, externalID, language string) error
	Search(ctx context.Context, query string) ([]*models.User, error)
	MergeDuplicatePhones(ctx context.Context) (*models.MergeResult, error)
}

type SlotService interface {
	CreateSlot(ctx context.Context, slot *models.Slot) (*models.Slot, error)
	GenerateSlots(ctx context.Context, serviceID int64, from, to time.Time, ranges []models.TimeRange, weekdays []time.Weekday, specialist string, capacity int64) (int, error)
	GetSlots(ctx context.Context, date *time.Time, serviceID int64) ([]*models.Slot, error)
	UpdateSlot(ctx context.Context, id int64, specialist *string, capacity *int64, status *string) error
	DeleteSlot(ctx context.Context, id int64) error
}

type BarService interface {
	GetMenu(ctx context.Context, categoryID int64, availableOnly bool) ([]*models.BarItem, error)
	GetCategories(ctx context.Context, activeOnly bool) ([]*models.BarCategory, error)
	CreateOrder(ctx context.Context, userID int64, lines []models.OrderLine) (*models.BarOrder, error)
	GetUserOrders(ctx context.Context, userID int64) ([]*models.BarOrder, error)
	GetOrdersByStatus(ctx context.Context, status string) ([]*models.BarOrder, error)
	SetOrderStatus(ctx context.Context, orderID int64, status string) error
}
