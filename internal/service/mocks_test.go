package service

import (
	"context"
	"time"

	"fitclub/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByExternalID(ctx context.Context, eid string) (*models.User, error) {
	args := m.Called(ctx, eid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) UpdateUserProfile(ctx context.Context, id int64, fn, ln, un string) error {
	return m.Called(ctx, id, fn, ln, un).Error(0)
}
func (m *mockRepo) UpdateUserPhone(ctx context.Context, eid, phone string) error {
	return m.Called(ctx, eid, phone).Error(0)
}
func (m *mockRepo) UpdateUserLanguage(ctx context.Context, eid, lang string) error {
	return m.Called(ctx, eid, lang).Error(0)
}
func (m *mockRepo) SearchUsers(ctx context.Context, search string) ([]*models.User, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockRepo) UsersWithPhone(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockRepo) MergeUserGroup(ctx context.Context, keepID int64, dups []int64, phone string) error {
	return m.Called(ctx, keepID, dups, phone).Error(0)
}

func (m *mockRepo) CreateServiceCategory(ctx context.Context, c *models.ServiceCategory) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockRepo) ListServiceCategories(ctx context.Context, activeOnly bool) ([]*models.ServiceCategory, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceCategory), args.Error(1)
}
func (m *mockRepo) CreateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockRepo) GetService(ctx context.Context, id int64) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockRepo) ListServices(ctx context.Context, categoryID int64, activeOnly bool) ([]*models.Service, error) {
	args := m.Called(ctx, categoryID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}
func (m *mockRepo) UpdateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRepo) CreateSlot(ctx context.Context, slot *models.Slot) error {
	return m.Called(ctx, slot).Error(0)
}
func (m *mockRepo) CreateSlots(ctx context.Context, slots []*models.Slot) (int, error) {
	args := m.Called(ctx, slots)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}
func (m *mockRepo) ListSlots(ctx context.Context, date *time.Time, serviceID int64) ([]*models.Slot, error) {
	args := m.Called(ctx, date, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Slot), args.Error(1)
}
func (m *mockRepo) UpdateSlot(ctx context.Context, id int64, sp *string, cap *int64, st *string) error {
	return m.Called(ctx, id, sp, cap, st).Error(0)
}
func (m *mockRepo) DeleteSlot(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) CancelBooking(ctx context.Context, id int64, status string) (*models.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) UpdateBookingStatus(ctx context.Context, id int64, from, to string) error {
	return m.Called(ctx, id, from, to).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) ListUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookingsByStatus(ctx context.Context, status string) ([]*models.Booking, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookingsByDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockRepo) CreateMembershipPlan(ctx context.Context, p *models.MembershipPlan) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetMembershipPlan(ctx context.Context, id int64) (*models.MembershipPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MembershipPlan), args.Error(1)
}
func (m *mockRepo) ListMembershipPlans(ctx context.Context, activeOnly bool) ([]*models.MembershipPlan, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MembershipPlan), args.Error(1)
}
func (m *mockRepo) UpdateMembershipPlan(ctx context.Context, p *models.MembershipPlan) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) CreateUserMembership(ctx context.Context, um *models.UserMembership) error {
	return m.Called(ctx, um).Error(0)
}
func (m *mockRepo) GetUserMembership(ctx context.Context, id int64) (*models.UserMembership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserMembership), args.Error(1)
}
func (m *mockRepo) ExpireStaleMemberships(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *mockRepo) CurrentMembership(ctx context.Context, userID int64) (*models.UserMembership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserMembership), args.Error(1)
}
func (m *mockRepo) ListUserMemberships(ctx context.Context, userID int64) ([]*models.UserMembership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserMembership), args.Error(1)
}
func (m *mockRepo) UpdateMembershipStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockRepo) FreezeMembership(ctx context.Context, id int64) (*models.MembershipFreeze, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MembershipFreeze), args.Error(1)
}
func (m *mockRepo) UnfreezeMembership(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) DecrementVisit(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) ListMembershipFreezes(ctx context.Context, id int64) ([]*models.MembershipFreeze, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MembershipFreeze), args.Error(1)
}

func (m *mockRepo) CreateBarCategory(ctx context.Context, c *models.BarCategory) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockRepo) ListBarCategories(ctx context.Context, activeOnly bool) ([]*models.BarCategory, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BarCategory), args.Error(1)
}
func (m *mockRepo) CreateBarItem(ctx context.Context, item *models.BarItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *mockRepo) GetBarItem(ctx context.Context, id int64) (*models.BarItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BarItem), args.Error(1)
}
func (m *mockRepo) ListBarItems(ctx context.Context, categoryID int64, availableOnly bool) ([]*models.BarItem, error) {
	args := m.Called(ctx, categoryID, availableOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BarItem), args.Error(1)
}
func (m *mockRepo) UpdateBarItem(ctx context.Context, item *models.BarItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *mockRepo) CreateBarOrder(ctx context.Context, userID int64, lines []models.OrderLine) (*models.BarOrder, error) {
	args := m.Called(ctx, userID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BarOrder), args.Error(1)
}
func (m *mockRepo) GetBarOrder(ctx context.Context, id int64) (*models.BarOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BarOrder), args.Error(1)
}
func (m *mockRepo) ListUserBarOrders(ctx context.Context, userID int64) ([]*models.BarOrder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BarOrder), args.Error(1)
}
func (m *mockRepo) ListBarOrdersByStatus(ctx context.Context, status string) ([]*models.BarOrder, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BarOrder), args.Error(1)
}
func (m *mockRepo) UpdateBarOrderStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockRepo) CreateFeedback(ctx context.Context, f *models.SessionFeedback) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockRepo) ListFeedback(ctx context.Context, limit int64) ([]*models.SessionFeedback, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionFeedback), args.Error(1)
}

func (m *mockRepo) GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}
func (m *mockRepo) GetAdminByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}
func (m *mockRepo) SeedAdmin(ctx context.Context, email, hash, name, role string) error {
	return m.Called(ctx, email, hash, name, role).Error(0)
}
func (m *mockRepo) SetAdminActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *mockRepo) GetPendingCounts(ctx context.Context) (*models.PendingCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingCounts), args.Error(1)
}
func (m *mockRepo) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockCacheRepo struct {
	mock.Mock
}

func (m *mockCacheRepo) GetPendingCounts(ctx context.Context) (*models.PendingCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingCounts), args.Error(1)
}
func (m *mockCacheRepo) SetPendingCounts(ctx context.Context, counts *models.PendingCounts) error {
	return m.Called(ctx, counts).Error(0)
}
func (m *mockCacheRepo) InvalidatePendingCounts(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *mockCacheRepo) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}
