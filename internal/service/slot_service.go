package service

import (
	"context"
	"time"

	"fitclub/internal/database"
	"fitclub/internal/domain"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
)

type SlotService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewSlotService(repo domain.Repository, logger *zerolog.Logger) *SlotService {
	return &SlotService{repo: repo, logger: logger}
}

func (s *SlotService) CreateSlot(ctx context.Context, slot *models.Slot) (*models.Slot, error) {
	service, err := s.repo.GetService(ctx, slot.ServiceID)
	if err != nil {
		return nil, err
	}
	if slot.Capacity <= 0 {
		slot.Capacity = service.Capacity
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// GenerateSlots разворачивает расписание: на каждый день периода по
// слоту на каждый интервал. Непустой набор weekdays ограничивает
// генерацию выбранными днями недели. Вся пачка вставляется одной
// транзакцией.
func (s *SlotService) GenerateSlots(ctx context.Context, serviceID int64, from, to time.Time, ranges []models.TimeRange, weekdays []time.Weekday, specialist string, capacity int64) (int, error) {
	if to.Before(from) {
		return 0, database.ErrInvalidDateRange
	}
	if len(ranges) == 0 {
		return 0, database.ErrNoTimeRanges
	}

	service, err := s.repo.GetService(ctx, serviceID)
	if err != nil {
		return 0, err
	}
	if capacity <= 0 {
		capacity = service.Capacity
	}

	allowed := make(map[time.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		allowed[d] = true
	}

	var slots []*models.Slot
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if len(allowed) > 0 && !allowed[day.Weekday()] {
			continue
		}
		for _, r := range ranges {
			slots = append(slots, &models.Slot{
				ServiceID:  serviceID,
				Date:       day,
				StartTime:  r.StartTime,
				EndTime:    r.EndTime,
				Specialist: specialist,
				Capacity:   capacity,
			})
		}
	}

	created, err := s.repo.CreateSlots(ctx, slots)
	if err != nil {
		return 0, err
	}
	s.logger.Info().
		Int64("service_id", serviceID).
		Int("created", created).
		Msg("slot schedule generated")
	return created, nil
}

func (s *SlotService) GetSlots(ctx context.Context, date *time.Time, serviceID int64) ([]*models.Slot, error) {
	return s.repo.ListSlots(ctx, date, serviceID)
}

func (s *SlotService) UpdateSlot(ctx context.Context, id int64, specialist *string, capacity *int64, status *string) error {
	return s.repo.UpdateSlot(ctx, id, specialist, capacity, status)
}

func (s *SlotService) DeleteSlot(ctx context.Context, id int64) error {
	return s.repo.DeleteSlot(ctx, id)
}
