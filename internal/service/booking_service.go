package service

import (
	"context"
	"time"

	"fitclub/internal/database"
	"fitclub/internal/domain"
	"fitclub/internal/events"
	"fitclub/internal/metrics"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo           domain.Repository
	memberships    domain.MembershipService
	eventBus       domain.EventPublisher
	cache          domain.CacheRepository
	maxAdvanceDays int
	logger         *zerolog.Logger
}

func NewBookingService(
	repo domain.Repository,
	memberships domain.MembershipService,
	eventBus domain.EventPublisher,
	cache domain.CacheRepository,
	maxAdvanceDays int,
	logger *zerolog.Logger,
) *BookingService {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = 30
	}
	return &BookingService{
		repo:           repo,
		memberships:    memberships,
		eventBus:       eventBus,
		cache:          cache,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

// ValidateSlotDate проверяет, что запись не в прошлое и не дальше
// горизонта записи. Граница дня считается в локальной зоне: клуб
// живёт не по UTC, и Truncate здесь дал бы чужую полночь.
func (s *BookingService) ValidateSlotDate(date time.Time) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	slotDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if slotDay.Before(today) {
		return database.ErrPastDate
	}
	if slotDay.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

// CreateBooking записывает клиента на слот. Если действующий абонемент
// покрывает услугу, бронь помечается абонементной, и после фиксации
// транзакции с тарифа VISITS списывается посещение. Сбой списания
// бронь не откатывает: занятие уже закреплено за клиентом.
func (s *BookingService) CreateBooking(ctx context.Context, userID, slotID int64, comment string) (*models.Booking, error) {
	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateSlotDate(slot.Date); err != nil {
		return nil, err
	}

	membership, covered, err := s.memberships.CoversService(ctx, userID, slot.ServiceID)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:       userID,
		SlotID:       slotID,
		Status:       models.BookingStatusPending,
		IsMembership: covered,
		Comment:      comment,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		metrics.IncBooking("create", "rejected")
		return nil, err
	}
	metrics.IncBooking("create", "ok")

	if covered && membership.Plan != nil && membership.Plan.Type == models.PlanTypeVisits {
		if err := s.repo.DecrementVisit(ctx, membership.ID); err != nil {
			s.logger.Error().Err(err).
				Int64("membership_id", membership.ID).
				Int64("booking_id", booking.ID).
				Msg("failed to decrement visit after booking")
		}
	}

	s.invalidatePendingCounts(ctx)
	s.publishBookingEvent(ctx, events.EventBookingCreated, booking, slot, "")

	return booking, nil
}

// CancelBooking отменяет бронь от имени клиента или администратора.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, byAdmin bool) (*models.Booking, error) {
	status := models.BookingStatusCancelledByUser
	changedBy := "user"
	if byAdmin {
		status = models.BookingStatusCancelledByAdmin
		changedBy = "admin"
	}

	booking, err := s.repo.CancelBooking(ctx, bookingID, status)
	if err != nil {
		metrics.IncBooking("cancel", "rejected")
		return nil, err
	}
	metrics.IncBooking("cancel", "ok")

	s.invalidatePendingCounts(ctx)

	slot, slotErr := s.repo.GetSlot(ctx, booking.SlotID)
	if slotErr == nil {
		s.publishBookingEvent(ctx, events.EventBookingCanceled, booking, slot, changedBy)
	}
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusPending {
		return database.ErrNotCancellable
	}

	if err := s.repo.UpdateBookingStatus(ctx, bookingID,
		models.BookingStatusPending, models.BookingStatusConfirmed); err != nil {
		return err
	}
	s.invalidatePendingCounts(ctx)

	booking.Status = models.BookingStatusConfirmed
	slot, err := s.repo.GetSlot(ctx, booking.SlotID)
	if err == nil {
		s.publishBookingEvent(ctx, events.EventBookingConfirmed, booking, slot, "admin")
	}
	return nil
}

// CompleteBooking отмечает посещение. Завершить можно только
// подтверждённую бронь: отменённые и ожидающие не переводятся.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusConfirmed {
		return database.ErrInvalidTransition
	}

	if err := s.repo.UpdateBookingStatus(ctx, bookingID,
		models.BookingStatusConfirmed, models.BookingStatusCompleted); err != nil {
		return err
	}

	booking.Status = models.BookingStatusCompleted
	slot, slotErr := s.repo.GetSlot(ctx, booking.SlotID)
	if slotErr == nil {
		s.publishBookingEvent(ctx, events.EventBookingCompleted, booking, slot, "admin")
	}
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.repo.ListUserBookings(ctx, userID)
}

func (s *BookingService) GetBookingsByStatus(ctx context.Context, status string) ([]*models.Booking, error) {
	return s.repo.ListBookingsByStatus(ctx, status)
}

func (s *BookingService) GetBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	return s.repo.ListBookingsBetween(ctx, from, to)
}

// LeaveFeedback принимает отзыв клиента о завершённом занятии.
func (s *BookingService) LeaveFeedback(ctx context.Context, userID, bookingID, rating int64, comment string) error {
	if rating < 1 || rating > 5 {
		return database.ErrInvalidRating
	}
	if len([]rune(comment)) > models.MaxFeedbackCommentLen {
		return database.ErrCommentTooLong
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	// Чужую бронь оценивать нельзя
	if booking.UserID != userID {
		return database.ErrBookingNotFound
	}

	if err := s.repo.CreateFeedback(ctx, &models.SessionFeedback{
		BookingID: bookingID,
		Rating:    rating,
		Comment:   comment,
	}); err != nil {
		return err
	}

	payload := events.FeedbackEventPayload{
		BookingID:   bookingID,
		ServiceName: booking.ServiceName,
		Rating:      rating,
		Comment:     comment,
	}
	if user, err := s.repo.GetUserByID(ctx, userID); err == nil {
		payload.UserName = user.FirstName
	}
	if err := s.eventBus.PublishJSON(events.EventFeedbackLeft, payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to publish feedback event")
	}
	return nil
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, booking *models.Booking, slot *models.Slot, changedBy string) {
	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		ServiceName: slot.ServiceName,
		Status:      booking.Status,
		Date:        slot.Date,
		StartTime:   slot.StartTime,
		Comment:     booking.Comment,
		ChangedBy:   changedBy,
	}
	if user, err := s.repo.GetUserByID(ctx, booking.UserID); err == nil {
		payload.ExternalID = user.ExternalID
		payload.UserName = user.FirstName
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish booking event")
	}
}

func (s *BookingService) invalidatePendingCounts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePendingCounts(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate pending counts cache")
	}
}
