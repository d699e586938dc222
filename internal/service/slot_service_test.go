package service

import (
	"context"
	"io"
	"testing"
	"time"

	"fitclub/internal/database"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSlotFixture(t *testing.T) (*mockRepo, *SlotService) {
	t.Helper()
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	return repo, NewSlotService(repo, &logger)
}

func TestCreateSlot_DefaultsCapacityFromService(t *testing.T) {
	repo, svc := newSlotFixture(t)
	ctx := context.Background()

	service := &models.Service{ID: 2, Capacity: 12}
	repo.On("GetService", ctx, int64(2)).Return(service, nil).Once()
	repo.On("CreateSlot", ctx, mock.AnythingOfType("*models.Slot")).Return(nil).Once()

	slot, err := svc.CreateSlot(ctx, &models.Slot{ServiceID: 2, StartTime: "10:00", EndTime: "11:00"})
	assert.NoError(t, err)
	assert.Equal(t, int64(12), slot.Capacity)
	repo.AssertExpectations(t)
}

func TestGenerateSlots(t *testing.T) {
	repo, svc := newSlotFixture(t)
	ctx := context.Background()

	service := &models.Service{ID: 2, Capacity: 10}
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2) // 3 дня
	ranges := []models.TimeRange{
		{StartTime: "10:00", EndTime: "11:00"},
		{StartTime: "18:00", EndTime: "19:00"},
	}

	repo.On("GetService", ctx, int64(2)).Return(service, nil).Once()
	repo.On("CreateSlots", ctx, mock.MatchedBy(func(slots []*models.Slot) bool {
		if len(slots) != 6 {
			return false
		}
		first, last := slots[0], slots[len(slots)-1]
		return first.Date.Equal(from) && first.StartTime == "10:00" &&
			last.Date.Equal(to) && last.StartTime == "18:00" &&
			first.Capacity == 10
	})).Return(6, nil).Once()

	created, err := svc.GenerateSlots(ctx, 2, from, to, ranges, nil, "Дмитрий", 0)
	assert.NoError(t, err)
	assert.Equal(t, 6, created)
	repo.AssertExpectations(t)
}

func TestGenerateSlots_WeekdayFilter(t *testing.T) {
	repo, svc := newSlotFixture(t)
	ctx := context.Background()

	// 2026-09-01 — вторник; за две недели попадают только пн и ср
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 13)
	ranges := []models.TimeRange{{StartTime: "10:00", EndTime: "11:00"}}
	weekdays := []time.Weekday{time.Monday, time.Wednesday}

	repo.On("GetService", ctx, int64(2)).Return(&models.Service{ID: 2, Capacity: 10}, nil).Once()
	repo.On("CreateSlots", ctx, mock.MatchedBy(func(slots []*models.Slot) bool {
		if len(slots) != 4 {
			return false
		}
		for _, slot := range slots {
			wd := slot.Date.Weekday()
			if wd != time.Monday && wd != time.Wednesday {
				return false
			}
		}
		return true
	})).Return(4, nil).Once()

	created, err := svc.GenerateSlots(ctx, 2, from, to, ranges, weekdays, "", 0)
	assert.NoError(t, err)
	assert.Equal(t, 4, created)
	repo.AssertExpectations(t)
}

func TestGenerateSlots_Validation(t *testing.T) {
	repo, svc := newSlotFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	ranges := []models.TimeRange{{StartTime: "10:00", EndTime: "11:00"}}

	_, err := svc.GenerateSlots(ctx, 2, day, day.AddDate(0, 0, -1), ranges, nil, "", 5)
	assert.ErrorIs(t, err, database.ErrInvalidDateRange)

	_, err = svc.GenerateSlots(ctx, 2, day, day, nil, nil, "", 5)
	assert.ErrorIs(t, err, database.ErrNoTimeRanges)

	repo.AssertNotCalled(t, "CreateSlots", mock.Anything, mock.Anything)
}

func TestGenerateSlots_ExplicitCapacity(t *testing.T) {
	repo, svc := newSlotFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo.On("GetService", ctx, int64(2)).Return(&models.Service{ID: 2, Capacity: 10}, nil).Once()
	repo.On("CreateSlots", ctx, mock.MatchedBy(func(slots []*models.Slot) bool {
		return len(slots) == 1 && slots[0].Capacity == 1 && slots[0].Specialist == "Ольга"
	})).Return(1, nil).Once()

	created, err := svc.GenerateSlots(ctx, 2, day, day, []models.TimeRange{{StartTime: "09:00", EndTime: "10:00"}}, nil, "Ольга", 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, created)
	repo.AssertExpectations(t)
}
