package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

type RawFetcher interface {
	FetchRaw(ctx context.Context, req domain.RecommendationRequest) ([]byte, error)
}

// Cache 在 redis 中缓存原始的推荐结果。带有假设修改的请求结果依赖于当时的编辑状态，不缓存
type Cache struct {
	client *redis.Client
	next   RawFetcher
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(client *redis.Client, next RawFetcher, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(req domain.RecommendationRequest) string {
	return fmt.Sprintf("%s:%d:%d:%s", schedulePrefix(req.ScheduleID), req.PositionID, req.ShiftID, req.Date)
}

func schedulePrefix(scheduleID int64) string {
	return fmt.Sprintf("recommendations:%d", scheduleID)
}

func (c *Cache) FetchRecommendations(ctx context.Context, req domain.RecommendationRequest) (*domain.Recommendations, error) {
	body, err := c.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	recs := &domain.Recommendations{}
	if err := json.Unmarshal(body, recs); err != nil {
		return nil, fmt.Errorf("无法解析推荐结果: %w", err)
	}
	return recs, nil
}

func (c *Cache) fetch(ctx context.Context, req domain.RecommendationRequest) ([]byte, error) {
	if len(req.Changes) > 0 || c.client == nil {
		return c.next.FetchRaw(ctx, req)
	}

	key := cacheKey(req)

	// redis 出错时直接访问推荐服务，缓存不可用不影响编辑
	body, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		return body, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("读取推荐缓存失败", "key", key, "error", err)
	}

	body, err = c.next.FetchRaw(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Warn("写入推荐缓存失败", "key", key, "error", err)
	}
	return body, nil
}

// Invalidate 在排班提交后调用，删除该排班表下所有缓存的推荐
func (c *Cache) Invalidate(ctx context.Context, scheduleID int64) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, schedulePrefix(scheduleID)+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
