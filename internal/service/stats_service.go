package service

import (
	"context"

	"fitclub/internal/domain"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
)

// StatsService отдаёт сводки для админки. Счётчики необработанных
// заявок кэшируются: админка поллит их каждые несколько секунд.
type StatsService struct {
	repo   domain.Repository
	cache  domain.CacheRepository
	logger *zerolog.Logger
}

func NewStatsService(repo domain.Repository, cache domain.CacheRepository, logger *zerolog.Logger) *StatsService {
	return &StatsService{repo: repo, cache: cache, logger: logger}
}

func (s *StatsService) GetPendingCounts(ctx context.Context) (*models.PendingCounts, error) {
	if s.cache != nil {
		counts, err := s.cache.GetPendingCounts(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("pending counts cache read failed")
		} else if counts != nil {
			return counts, nil
		}
	}

	counts, err := s.repo.GetPendingCounts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPendingCounts(ctx, counts); err != nil {
			s.logger.Warn().Err(err).Msg("pending counts cache write failed")
		}
	}
	return counts, nil
}

func (s *StatsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx)
}
