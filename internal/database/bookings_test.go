package database

import (
	"context"
	"testing"

	"fitclub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 2)
	user := createTestUser(t, db, "1001", "998901234567")

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID}
	require.NoError(t, db.CreateBooking(ctx, booking))
	assert.NotZero(t, booking.ID)
	assert.Equal(t, models.BookingStatusPending, booking.Status)

	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.BookedCount)
}

func TestCreateBooking_SlotFull(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 1)
	first := createTestUser(t, db, "1001", "998901111111")
	second := createTestUser(t, db, "1002", "998902222222")

	require.NoError(t, db.CreateBooking(ctx, &models.Booking{UserID: first.ID, SlotID: slot.ID}))

	err := db.CreateBooking(ctx, &models.Booking{UserID: second.ID, SlotID: slot.ID})
	assert.ErrorIs(t, err, ErrSlotFull)

	// Счётчик не вырос после отказа
	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.BookedCount)
}

func TestCreateBooking_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 5)
	user := createTestUser(t, db, "1001", "998901234567")

	require.NoError(t, db.CreateBooking(ctx, &models.Booking{UserID: user.ID, SlotID: slot.ID}))

	err := db.CreateBooking(ctx, &models.Booking{UserID: user.ID, SlotID: slot.ID})
	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestCreateBooking_AfterCancelNotDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 5)
	user := createTestUser(t, db, "1001", "998901234567")

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID}
	require.NoError(t, db.CreateBooking(ctx, booking))

	_, err := db.CancelBooking(ctx, booking.ID, models.BookingStatusCancelledByUser)
	require.NoError(t, err)

	// Отменённая бронь не считается дубликатом
	err = db.CreateBooking(ctx, &models.Booking{UserID: user.ID, SlotID: slot.ID})
	assert.NoError(t, err)
}

func TestCreateBooking_SlotNotFound(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "1001", "998901234567")

	err := db.CreateBooking(context.Background(), &models.Booking{UserID: user.ID, SlotID: 9999})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestCancelBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 1)
	user := createTestUser(t, db, "1001", "998901234567")

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID}
	require.NoError(t, db.CreateBooking(ctx, booking))

	cancelled, err := db.CancelBooking(ctx, booking.ID, models.BookingStatusCancelledByAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelledByAdmin, cancelled.Status)

	// Место освобождено в той же транзакции
	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.BookedCount)
}

func TestCancelBooking_NotCancellable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 1)
	user := createTestUser(t, db, "1001", "998901234567")

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID}
	require.NoError(t, db.CreateBooking(ctx, booking))
	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID,
		models.BookingStatusPending, models.BookingStatusCompleted))

	_, err := db.CancelBooking(ctx, booking.ID, models.BookingStatusCancelledByUser)
	assert.ErrorIs(t, err, ErrNotCancellable)

	// Повторная отмена уже отменённой брони тоже запрещена
	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID,
		models.BookingStatusCompleted, models.BookingStatusCancelledByUser))
	_, err = db.CancelBooking(ctx, booking.ID, models.BookingStatusCancelledByUser)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestUpdateBookingStatus_GuardsTransition(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 1)
	user := createTestUser(t, db, "1001", "998901234567")

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID}
	require.NoError(t, db.CreateBooking(ctx, booking))
	_, err := db.CancelBooking(ctx, booking.ID, models.BookingStatusCancelledByUser)
	require.NoError(t, err)

	// Отменённую бронь нельзя отметить посещённой
	err = db.UpdateBookingStatus(ctx, booking.ID,
		models.BookingStatusConfirmed, models.BookingStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelledByUser, got.Status)

	err = db.UpdateBookingStatus(ctx, 9999,
		models.BookingStatusPending, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.CancelBooking(context.Background(), 9999, models.BookingStatusCancelledByUser)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListUserBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot1 := createTestSlot(t, db, service.ID, 5)
	slot2 := createTestSlot(t, db, service.ID, 5)
	user := createTestUser(t, db, "1001", "998901234567")
	other := createTestUser(t, db, "1002", "998902222222")

	require.NoError(t, db.CreateBooking(ctx, &models.Booking{UserID: user.ID, SlotID: slot1.ID}))
	require.NoError(t, db.CreateBooking(ctx, &models.Booking{UserID: user.ID, SlotID: slot2.ID}))
	require.NoError(t, db.CreateBooking(ctx, &models.Booking{UserID: other.ID, SlotID: slot1.ID}))

	bookings, err := db.ListUserBookings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	// JOIN-поля заполнены
	assert.Equal(t, "Персональная тренировка", bookings[0].ServiceName)
	assert.Equal(t, "10:00", bookings[0].SlotStart)
	assert.False(t, bookings[0].HasFeedback)
}

func TestListBookingsByStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 5)
	user := createTestUser(t, db, "1001", "998901234567")

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID}
	require.NoError(t, db.CreateBooking(ctx, booking))

	pending, err := db.ListBookingsByStatus(ctx, models.BookingStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID,
		models.BookingStatusPending, models.BookingStatusConfirmed))

	pending, err = db.ListBookingsByStatus(ctx, models.BookingStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFeedback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 1)
	user := createTestUser(t, db, "1001", "998901234567")

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID}
	require.NoError(t, db.CreateBooking(ctx, booking))

	t.Run("NotCompletedRejected", func(t *testing.T) {
		err := db.CreateFeedback(ctx, &models.SessionFeedback{BookingID: booking.ID, Rating: 5})
		assert.ErrorIs(t, err, ErrFeedbackNotAllowed)
	})

	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID,
		models.BookingStatusPending, models.BookingStatusCompleted))

	t.Run("Completed", func(t *testing.T) {
		err := db.CreateFeedback(ctx, &models.SessionFeedback{BookingID: booking.ID, Rating: 5, Comment: "Отлично"})
		assert.NoError(t, err)

		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.True(t, got.HasFeedback)
	})

	t.Run("SecondFeedbackRejected", func(t *testing.T) {
		err := db.CreateFeedback(ctx, &models.SessionFeedback{BookingID: booking.ID, Rating: 4})
		assert.ErrorIs(t, err, ErrFeedbackExists)
	})
}
