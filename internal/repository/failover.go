package repository

import (
	"context"
	"sync/atomic"
	"time"

	"fitclub/internal/domain"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
)

// FailoverCacheRepository ходит в Redis, а при сбое переключается на
// кэш в памяти. Раз в минуту пробует вернуться на Redis.
type FailoverCacheRepository struct {
	primary   domain.CacheRepository
	fallback  domain.CacheRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverCacheRepository(primary, fallback domain.CacheRepository, logger *zerolog.Logger) *FailoverCacheRepository {
	return &FailoverCacheRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCacheRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

// usePrimary сообщает, стоит ли идти в Redis: либо он жив, либо прошла
// минута с последней неудачной попытки и пора проверить снова.
func (r *FailoverCacheRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	if time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		r.lastCheck.Store(time.Now().UnixNano())
		return true
	}
	return false
}

func (r *FailoverCacheRepository) GetPendingCounts(ctx context.Context) (*models.PendingCounts, error) {
	if r.usePrimary() {
		counts, err := r.primary.GetPendingCounts(ctx)
		if err == nil {
			r.isDown.Store(false)
			return counts, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetPendingCounts(ctx)
}

func (r *FailoverCacheRepository) SetPendingCounts(ctx context.Context, counts *models.PendingCounts) error {
	if r.usePrimary() {
		err := r.primary.SetPendingCounts(ctx, counts)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetPendingCounts(ctx, counts)
}

func (r *FailoverCacheRepository) InvalidatePendingCounts(ctx context.Context) error {
	if r.usePrimary() {
		err := r.primary.InvalidatePendingCounts(ctx)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.InvalidatePendingCounts(ctx)
}

func (r *FailoverCacheRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
