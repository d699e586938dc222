package service

import (
	"context"

	"fitclub/internal/database"
	"fitclub/internal/domain"
	"fitclub/internal/events"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
)

type BarService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	cache    domain.CacheRepository
	logger   *zerolog.Logger
}

func NewBarService(repo domain.Repository, eventBus domain.EventPublisher, cache domain.CacheRepository, logger *zerolog.Logger) *BarService {
	return &BarService{repo: repo, eventBus: eventBus, cache: cache, logger: logger}
}

func (s *BarService) GetMenu(ctx context.Context, categoryID int64, availableOnly bool) ([]*models.BarItem, error) {
	return s.repo.ListBarItems(ctx, categoryID, availableOnly)
}

func (s *BarService) GetCategories(ctx context.Context, activeOnly bool) ([]*models.BarCategory, error) {
	return s.repo.ListBarCategories(ctx, activeOnly)
}

func (s *BarService) CreateOrder(ctx context.Context, userID int64, lines []models.OrderLine) (*models.BarOrder, error) {
	if len(lines) == 0 {
		return nil, database.ErrEmptyOrder
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, database.ErrEmptyOrder
		}
	}

	order, err := s.repo.CreateBarOrder(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	s.invalidatePendingCounts(ctx)
	s.publishOrderEvent(ctx, events.EventBarOrderCreated, order)
	return order, nil
}

func (s *BarService) GetUserOrders(ctx context.Context, userID int64) ([]*models.BarOrder, error) {
	return s.repo.ListUserBarOrders(ctx, userID)
}

func (s *BarService) GetOrdersByStatus(ctx context.Context, status string) ([]*models.BarOrder, error) {
	return s.repo.ListBarOrdersByStatus(ctx, status)
}

func (s *BarService) SetOrderStatus(ctx context.Context, orderID int64, status string) error {
	if !models.IsValidBarOrderStatus(status) {
		return database.ErrInvalidOrderStatus
	}
	if err := s.repo.UpdateBarOrderStatus(ctx, orderID, status); err != nil {
		return err
	}
	s.invalidatePendingCounts(ctx)

	order, err := s.repo.GetBarOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("order_id", orderID).Msg("failed to load order for status event")
		return nil
	}
	s.publishOrderEvent(ctx, events.EventBarOrderStatusChanged, order)
	return nil
}

func (s *BarService) publishOrderEvent(ctx context.Context, eventType string, order *models.BarOrder) {
	if s.eventBus == nil {
		return
	}
	user, err := s.repo.GetUserByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", order.UserID).Msg("failed to load user for bar event")
		return
	}
	payload := events.BarOrderEventPayload{
		OrderID:    order.ID,
		UserID:     order.UserID,
		ExternalID: user.ExternalID,
		Status:     order.Status,
		Total:      order.Total,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish bar event")
	}
}

func (s *BarService) invalidatePendingCounts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePendingCounts(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate pending counts cache")
	}
}
