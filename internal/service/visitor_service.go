package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/repository"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const visitorKeyTTL = 8 * 24 * time.Hour

type RecordVisitReq struct {
	Path string `json:"path" binding:"required,max=255" example:"/quiz"`
}

type VisitorStats struct {
	Days        []model.DailyVisits `json:"days"`
	UniqueToday int64               `json:"uniqueToday"`
}

// VisitorService stores page visits. The raw address is never persisted,
// only a per-day hash of address and user agent.
type VisitorService struct {
	Repo  *repository.VisitorRepository
	Cache *redis.Client
	now   func() time.Time
}

func NewVisitorService(repo *repository.VisitorRepository, cache *redis.Client) *VisitorService {
	return &VisitorService{Repo: repo, Cache: cache, now: time.Now}
}

func visitorHash(ip, userAgent, day string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent + "|" + day))
	return hex.EncodeToString(sum[:])
}

func uniqueVisitorsKey(day string) string {
	return "visitors:unique:" + day
}

func (s *VisitorService) Record(ctx context.Context, ip, userAgent, userID string, req RecordVisitReq) error {
	day := s.now().UTC().Format(util.DateFormat)
	if len(userAgent) > 512 {
		userAgent = userAgent[:512]
	}
	v := &model.Visitor{
		VisitorHash: visitorHash(ip, userAgent, day),
		UserID:      userID,
		Path:        req.Path,
		UserAgent:   userAgent,
		VisitedOn:   day,
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	if s.Cache != nil {
		key := uniqueVisitorsKey(day)
		pipe := s.Cache.Pipeline()
		pipe.PFAdd(ctx, key, v.VisitorHash)
		pipe.Expire(ctx, key, visitorKeyTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Log.Warn("Visitor counter update failed", zap.Error(err))
		}
	}
	return nil
}

// Stats returns daily totals for the last days (today included).
func (s *VisitorService) Stats(ctx context.Context, days int) (*VisitorStats, error) {
	if days <= 0 || days > 90 {
		days = 7
	}
	now := s.now().UTC()
	since := now.AddDate(0, 0, -(days - 1)).Format(util.DateFormat)
	rows, err := s.Repo.DailyStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("visitor stats: %w", err)
	}
	stats := &VisitorStats{Days: rows}

	today := now.Format(util.DateFormat)
	if s.Cache != nil {
		n, err := s.Cache.PFCount(ctx, uniqueVisitorsKey(today)).Result()
		if err == nil {
			stats.UniqueToday = n
			return stats, nil
		}
		logger.Log.Warn("Visitor counter read failed", zap.Error(err))
	}
	for _, r := range rows {
		if r.Day == today {
			stats.UniqueToday = r.Visitors
		}
	}
	return stats, nil
}
