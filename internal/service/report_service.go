package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/servicedesk-io/servicedesk/internal/config"
	"github.com/servicedesk-io/servicedesk/internal/repository"
	"github.com/servicedesk-io/servicedesk/pkg/util"
)

const (
	statusCountsCacheKey  = "reports:status_counts"
	avgResolutionCacheKey = "reports:avg_resolution_hours"
)

// ReportService exposes the read-only ticket aggregates. Results are cached
// briefly in redis; on cache trouble it falls through to the database.
type ReportService struct {
	stats  repository.StatsRepository
	cache  *redis.Client
	ttl    config.ReportsConfig
	logger *zap.Logger
}

// NewReportService constructs the service. cache may be nil.
func NewReportService(stats repository.StatsRepository, cache *redis.Client, cfg config.ReportsConfig, logger *zap.Logger) *ReportService {
	return &ReportService{stats: stats, cache: cache, ttl: cfg, logger: logger}
}

// StatusCounts returns the number of tickets per status.
func (s *ReportService) StatusCounts(ctx context.Context) ([]repository.StatusCount, error) {
	if cached, ok := s.cacheGet(ctx, statusCountsCacheKey); ok {
		var counts []repository.StatusCount
		if err := json.Unmarshal(cached, &counts); err == nil {
			return counts, nil
		}
	}

	counts, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	s.cacheSet(ctx, statusCountsCacheKey, counts)
	return counts, nil
}

// AverageResolutionHours returns the mean hours from creation to the last
// update over Resolved tickets.
func (s *ReportService) AverageResolutionHours(ctx context.Context) (float64, error) {
	if cached, ok := s.cacheGet(ctx, avgResolutionCacheKey); ok {
		var hours float64
		if err := json.Unmarshal(cached, &hours); err == nil {
			return hours, nil
		}
	}

	hours, err := s.stats.AverageResolutionHours(ctx)
	if err != nil {
		return 0, util.NewStoreUnavailable(err)
	}
	s.cacheSet(ctx, avgResolutionCacheKey, hours)
	return hours, nil
}

func (s *ReportService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl.ReportsCacheTTL()).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
