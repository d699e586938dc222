package repository

import (
	"context"
	"sync"
	"time"

	"fitclub/internal/models"
)

// MemoryCacheRepository резервная реализация кэша на случай недоступного
// Redis. Истечение TTL проверяется при чтении.
type MemoryCacheRepository struct {
	mu         sync.Mutex
	counts     *models.PendingCounts
	countsExp  time.Time
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryCacheRepository(ttl time.Duration) *MemoryCacheRepository {
	return &MemoryCacheRepository{ttl: ttl}
}

func (r *MemoryCacheRepository) GetPendingCounts(ctx context.Context) (*models.PendingCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil || time.Now().After(r.countsExp) {
		return nil, nil
	}
	counts := *r.counts
	return &counts, nil
}

func (r *MemoryCacheRepository) SetPendingCounts(ctx context.Context, counts *models.PendingCounts) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *counts
	r.counts = &copied
	r.countsExp = time.Now().Add(r.ttl)
	return nil
}

func (r *MemoryCacheRepository) InvalidatePendingCounts(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = nil
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryCacheRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(userID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(userID, entry)
	return entry.count <= limit, nil
}
