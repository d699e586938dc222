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

type MembershipService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewMembershipService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *MembershipService {
	return &MembershipService{repo: repo, eventBus: eventBus, logger: logger}
}

func (s *MembershipService) GetPlans(ctx context.Context, activeOnly bool) ([]*models.MembershipPlan, error) {
	return s.repo.ListMembershipPlans(ctx, activeOnly)
}

func (s *MembershipService) CreatePlan(ctx context.Context, plan *models.MembershipPlan) error {
	if plan.Type == models.PlanTypeVisits && !plan.TotalVisits.Valid {
		return database.ErrPlanVisitsRequired
	}
	return s.repo.CreateMembershipPlan(ctx, plan)
}

func (s *MembershipService) UpdatePlan(ctx context.Context, plan *models.MembershipPlan) error {
	if plan.Type == models.PlanTypeVisits && !plan.TotalVisits.Valid {
		return database.ErrPlanVisitsRequired
	}
	return s.repo.UpdateMembershipPlan(ctx, plan)
}

// Purchase оформляет абонемент. Второй действующий абонемент не
// допускается: просроченные сначала лениво закрываются.
func (s *MembershipService) Purchase(ctx context.Context, userID, planID int64, paymentType string) (*models.UserMembership, error) {
	plan, err := s.repo.GetMembershipPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, database.ErrPlanInactive
	}

	if err := s.repo.ExpireStaleMemberships(ctx); err != nil {
		return nil, err
	}
	current, err := s.repo.CurrentMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, database.ErrAlreadyHasMembership
	}

	if paymentType == "" {
		paymentType = models.PaymentTypeOffline
	}

	now := time.Now()
	membership := &models.UserMembership{
		UserID:          userID,
		PlanID:          plan.ID,
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, int(plan.DurationDays)),
		RemainingVisits: plan.TotalVisits,
		Status:          models.MembershipStatusActive,
		PaymentType:     paymentType,
	}
	if err := s.repo.CreateUserMembership(ctx, membership); err != nil {
		return nil, err
	}
	membership.Plan = plan
	metrics.IncMembership("purchase")

	s.publishMembershipEvent(ctx, events.EventMembershipPurchased, membership, 0)
	return membership, nil
}

// GetCurrent возвращает действующий абонемент клиента либо nil.
func (s *MembershipService) GetCurrent(ctx context.Context, userID int64) (*models.UserMembership, error) {
	if err := s.repo.ExpireStaleMemberships(ctx); err != nil {
		return nil, err
	}
	return s.repo.CurrentMembership(ctx, userID)
}

func (s *MembershipService) GetHistory(ctx context.Context, userID int64) ([]*models.UserMembership, error) {
	if err := s.repo.ExpireStaleMemberships(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListUserMemberships(ctx, userID)
}

func (s *MembershipService) Freeze(ctx context.Context, membershipID int64) (*models.MembershipFreeze, error) {
	if err := s.repo.ExpireStaleMemberships(ctx); err != nil {
		return nil, err
	}
	freeze, err := s.repo.FreezeMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	metrics.IncMembership("freeze")

	if m, getErr := s.repo.GetUserMembership(ctx, membershipID); getErr == nil {
		s.publishMembershipEvent(ctx, events.EventMembershipFrozen, m, 0)
	}
	return freeze, nil
}

func (s *MembershipService) Unfreeze(ctx context.Context, membershipID int64) (int64, error) {
	days, err := s.repo.UnfreezeMembership(ctx, membershipID)
	if err != nil {
		return 0, err
	}
	metrics.IncMembership("unfreeze")

	if m, getErr := s.repo.GetUserMembership(ctx, membershipID); getErr == nil {
		s.publishMembershipEvent(ctx, events.EventMembershipUnfrozen, m, days)
	}
	return days, nil
}

// CoversService решает, покрывает ли действующий абонемент услугу.
// Замороженный абонемент не покрывает ничего, как и тариф VISITS с
// исчерпанными посещениями. Покрываются только услуги, явно привязанные
// к тарифу.
func (s *MembershipService) CoversService(ctx context.Context, userID, serviceID int64) (*models.UserMembership, bool, error) {
	if err := s.repo.ExpireStaleMemberships(ctx); err != nil {
		return nil, false, err
	}
	membership, err := s.repo.CurrentMembership(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if membership == nil || membership.IsFrozen() {
		return membership, false, nil
	}
	if membership.Plan == nil {
		return membership, false, nil
	}
	if membership.Plan.Type == models.PlanTypeVisits &&
		(!membership.RemainingVisits.Valid || membership.RemainingVisits.Int64 <= 0) {
		return membership, false, nil
	}

	// Состав тарифа хранится отдельно от JOIN-выборки абонемента
	plan, err := s.repo.GetMembershipPlan(ctx, membership.PlanID)
	if err != nil {
		return membership, false, err
	}
	for _, id := range plan.IncludedServiceIDs {
		if id == serviceID {
			return membership, true, nil
		}
	}
	return membership, false, nil
}

func (s *MembershipService) publishMembershipEvent(ctx context.Context, eventType string, m *models.UserMembership, daysFrozen int64) {
	payload := events.MembershipEventPayload{
		MembershipID: m.ID,
		UserID:       m.UserID,
		EndDate:      m.EndDate,
		DaysFrozen:   daysFrozen,
	}
	if m.Plan != nil {
		payload.PlanName = m.Plan.Name.Ru
	}
	if user, err := s.repo.GetUserByID(ctx, m.UserID); err == nil {
		payload.ExternalID = user.ExternalID
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish membership event")
	}
}
