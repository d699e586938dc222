package service

import (
	"context"
	"io"
	"testing"
	"time"

	"fitclub/internal/database"
	"fitclub/internal/events"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newBookingFixture(t *testing.T) (*mockRepo, *mockEventBus, *mockCacheRepo, *MembershipService, *BookingService) {
	t.Helper()
	repo := new(mockRepo)
	bus := new(mockEventBus)
	cache := new(mockCacheRepo)
	logger := zerolog.New(io.Discard)
	memberships := NewMembershipService(repo, bus, &logger)
	svc := NewBookingService(repo, memberships, bus, cache, 30, &logger)
	return repo, bus, cache, memberships, svc
}

func TestValidateSlotDate(t *testing.T) {
	_, _, _, _, svc := newBookingFixture(t)
	now := time.Now()

	assert.ErrorIs(t, svc.ValidateSlotDate(now.AddDate(0, 0, -1)), database.ErrPastDate)
	assert.ErrorIs(t, svc.ValidateSlotDate(now.AddDate(0, 0, 31)), database.ErrDateTooFar)
	assert.NoError(t, svc.ValidateSlotDate(now.AddDate(0, 0, 5)))

	// Граница дня — локальная дата, независимо от зоны хоста:
	// даты слотов хранятся как полночь UTC
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	assert.NoError(t, svc.ValidateSlotDate(today))
	assert.ErrorIs(t, svc.ValidateSlotDate(today.AddDate(0, 0, -1)), database.ErrPastDate)
}

func TestCreateBooking_NoMembership(t *testing.T) {
	repo, bus, cache, _, svc := newBookingFixture(t)
	ctx := context.Background()

	slot := &models.Slot{ID: 5, ServiceID: 2, ServiceName: "Йога", Date: time.Now().AddDate(0, 0, 3), StartTime: "10:00"}
	user := &models.User{ID: 7, ExternalID: "123456", FirstName: "Анна"}

	repo.On("GetSlot", ctx, int64(5)).Return(slot, nil).Once()
	repo.On("ExpireStaleMemberships", ctx).Return(nil).Once()
	repo.On("CurrentMembership", ctx, int64(7)).Return(nil, nil).Once()
	repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
	repo.On("GetUserByID", ctx, int64(7)).Return(user, nil).Once()
	cache.On("InvalidatePendingCounts", ctx).Return(nil).Once()
	bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

	booking, err := svc.CreateBooking(ctx, 7, 5, "после работы")
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.False(t, booking.IsMembership)
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestCreateBooking_MembershipCoversAndDecrements(t *testing.T) {
	repo, bus, cache, _, svc := newBookingFixture(t)
	ctx := context.Background()

	slot := &models.Slot{ID: 5, ServiceID: 2, Date: time.Now().AddDate(0, 0, 3)}
	plan := visitsPlan(8)
	membership := &models.UserMembership{
		ID:              40,
		UserID:          7,
		PlanID:          plan.ID,
		Status:          models.MembershipStatusActive,
		RemainingVisits: plan.TotalVisits,
		Plan:            plan,
	}
	user := &models.User{ID: 7, ExternalID: "123456"}

	repo.On("GetSlot", ctx, int64(5)).Return(slot, nil).Once()
	repo.On("ExpireStaleMemberships", ctx).Return(nil).Once()
	repo.On("CurrentMembership", ctx, int64(7)).Return(membership, nil).Once()
	repo.On("GetMembershipPlan", ctx, plan.ID).Return(plan, nil).Once()
	repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
	repo.On("DecrementVisit", ctx, int64(40)).Return(nil).Once()
	repo.On("GetUserByID", ctx, int64(7)).Return(user, nil).Once()
	cache.On("InvalidatePendingCounts", ctx).Return(nil).Once()
	bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

	booking, err := svc.CreateBooking(ctx, 7, 5, "")
	assert.NoError(t, err)
	assert.True(t, booking.IsMembership)
	repo.AssertExpectations(t)
}

func TestCreateBooking_DecrementFailureDoesNotFail(t *testing.T) {
	repo, bus, cache, _, svc := newBookingFixture(t)
	ctx := context.Background()

	slot := &models.Slot{ID: 5, ServiceID: 2, Date: time.Now().AddDate(0, 0, 3)}
	plan := visitsPlan(1)
	membership := &models.UserMembership{
		ID:              40,
		UserID:          7,
		PlanID:          plan.ID,
		Status:          models.MembershipStatusActive,
		RemainingVisits: plan.TotalVisits,
		Plan:            plan,
	}

	repo.On("GetSlot", ctx, int64(5)).Return(slot, nil).Once()
	repo.On("ExpireStaleMemberships", ctx).Return(nil).Once()
	repo.On("CurrentMembership", ctx, int64(7)).Return(membership, nil).Once()
	repo.On("GetMembershipPlan", ctx, plan.ID).Return(plan, nil).Once()
	repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
	repo.On("DecrementVisit", ctx, int64(40)).Return(database.ErrNoVisitsRemaining).Once()
	repo.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
	cache.On("InvalidatePendingCounts", ctx).Return(nil).Once()
	bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

	// Место уже закреплено за клиентом, сбой списания бронь не валит
	booking, err := svc.CreateBooking(ctx, 7, 5, "")
	assert.NoError(t, err)
	assert.NotNil(t, booking)
	repo.AssertExpectations(t)
}

func TestCreateBooking_PastSlot(t *testing.T) {
	repo, _, _, _, svc := newBookingFixture(t)
	ctx := context.Background()

	slot := &models.Slot{ID: 5, ServiceID: 2, Date: time.Now().AddDate(0, 0, -2)}
	repo.On("GetSlot", ctx, int64(5)).Return(slot, nil).Once()

	_, err := svc.CreateBooking(ctx, 7, 5, "")
	assert.ErrorIs(t, err, database.ErrPastDate)
	repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCancelBooking(t *testing.T) {
	repo, bus, cache, _, svc := newBookingFixture(t)
	ctx := context.Background()

	cancelled := &models.Booking{ID: 9, UserID: 7, SlotID: 5, Status: models.BookingStatusCancelledByUser}
	slot := &models.Slot{ID: 5, Date: time.Now().AddDate(0, 0, 1)}

	repo.On("CancelBooking", ctx, int64(9), models.BookingStatusCancelledByUser).Return(cancelled, nil).Once()
	repo.On("GetSlot", ctx, int64(5)).Return(slot, nil).Once()
	repo.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
	cache.On("InvalidatePendingCounts", ctx).Return(nil).Once()
	bus.On("PublishJSON", events.EventBookingCanceled, mock.Anything).Return(nil).Once()

	booking, err := svc.CancelBooking(ctx, 9, false)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelledByUser, booking.Status)
	repo.AssertExpectations(t)
}

func TestCancelBooking_ByAdmin(t *testing.T) {
	repo, bus, cache, _, svc := newBookingFixture(t)
	ctx := context.Background()

	cancelled := &models.Booking{ID: 9, UserID: 7, SlotID: 5, Status: models.BookingStatusCancelledByAdmin}

	repo.On("CancelBooking", ctx, int64(9), models.BookingStatusCancelledByAdmin).Return(cancelled, nil).Once()
	repo.On("GetSlot", ctx, int64(5)).Return(&models.Slot{ID: 5}, nil).Once()
	repo.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
	cache.On("InvalidatePendingCounts", ctx).Return(nil).Once()
	bus.On("PublishJSON", events.EventBookingCanceled, mock.Anything).Return(nil).Once()

	_, err := svc.CancelBooking(ctx, 9, true)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestConfirmBooking(t *testing.T) {
	repo, bus, cache, _, svc := newBookingFixture(t)
	ctx := context.Background()

	pending := &models.Booking{ID: 9, UserID: 7, SlotID: 5, Status: models.BookingStatusPending}

	repo.On("GetBooking", ctx, int64(9)).Return(pending, nil).Once()
	repo.On("UpdateBookingStatus", ctx, int64(9),
		models.BookingStatusPending, models.BookingStatusConfirmed).Return(nil).Once()
	repo.On("GetSlot", ctx, int64(5)).Return(&models.Slot{ID: 5}, nil).Once()
	repo.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
	cache.On("InvalidatePendingCounts", ctx).Return(nil).Once()
	bus.On("PublishJSON", events.EventBookingConfirmed, mock.Anything).Return(nil).Once()

	assert.NoError(t, svc.ConfirmBooking(ctx, 9))
	repo.AssertExpectations(t)
}

func TestConfirmBooking_NotPending(t *testing.T) {
	repo, _, _, _, svc := newBookingFixture(t)
	ctx := context.Background()

	completed := &models.Booking{ID: 9, Status: models.BookingStatusCompleted}
	repo.On("GetBooking", ctx, int64(9)).Return(completed, nil).Once()

	assert.ErrorIs(t, svc.ConfirmBooking(ctx, 9), database.ErrNotCancellable)
	repo.AssertNotCalled(t, "UpdateBookingStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteBooking(t *testing.T) {
	repo, bus, _, _, svc := newBookingFixture(t)
	ctx := context.Background()

	confirmed := &models.Booking{ID: 9, UserID: 7, SlotID: 5, Status: models.BookingStatusConfirmed}

	repo.On("GetBooking", ctx, int64(9)).Return(confirmed, nil).Once()
	repo.On("UpdateBookingStatus", ctx, int64(9),
		models.BookingStatusConfirmed, models.BookingStatusCompleted).Return(nil).Once()
	repo.On("GetSlot", ctx, int64(5)).Return(&models.Slot{ID: 5}, nil).Once()
	repo.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
	bus.On("PublishJSON", events.EventBookingCompleted, mock.Anything).Return(nil).Once()

	assert.NoError(t, svc.CompleteBooking(ctx, 9))
	repo.AssertExpectations(t)
}

func TestCompleteBooking_RejectsNotConfirmed(t *testing.T) {
	repo, _, _, _, svc := newBookingFixture(t)
	ctx := context.Background()

	for _, status := range []string{
		models.BookingStatusPending,
		models.BookingStatusCancelledByUser,
		models.BookingStatusCompleted,
	} {
		booking := &models.Booking{ID: 9, Status: status}
		repo.On("GetBooking", ctx, int64(9)).Return(booking, nil).Once()

		assert.ErrorIs(t, svc.CompleteBooking(ctx, 9), database.ErrInvalidTransition)
	}
	repo.AssertNotCalled(t, "UpdateBookingStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveFeedback(t *testing.T) {
	repo, bus, _, _, svc := newBookingFixture(t)
	ctx := context.Background()

	booking := &models.Booking{ID: 9, UserID: 7, Status: models.BookingStatusCompleted, ServiceName: "Йога"}

	t.Run("ok", func(t *testing.T) {
		repo.On("GetBooking", ctx, int64(9)).Return(booking, nil).Once()
		repo.On("CreateFeedback", ctx, mock.AnythingOfType("*models.SessionFeedback")).Return(nil).Once()
		repo.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7, FirstName: "Анна"}, nil).Once()
		bus.On("PublishJSON", events.EventFeedbackLeft, mock.Anything).Return(nil).Once()

		assert.NoError(t, svc.LeaveFeedback(ctx, 7, 9, 5, "Отличная тренировка"))
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("invalid rating", func(t *testing.T) {
		assert.ErrorIs(t, svc.LeaveFeedback(ctx, 7, 9, 0, ""), database.ErrInvalidRating)
		assert.ErrorIs(t, svc.LeaveFeedback(ctx, 7, 9, 6, ""), database.ErrInvalidRating)
	})

	t.Run("comment too long", func(t *testing.T) {
		long := make([]rune, models.MaxFeedbackCommentLen+1)
		for i := range long {
			long[i] = 'ы'
		}
		assert.ErrorIs(t, svc.LeaveFeedback(ctx, 7, 9, 4, string(long)), database.ErrCommentTooLong)
	})

	t.Run("foreign booking", func(t *testing.T) {
		repo.On("GetBooking", ctx, int64(9)).Return(booking, nil).Once()

		err := svc.LeaveFeedback(ctx, 999, 9, 4, "")
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
	})
}
