package recommend_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/recommend"
)

var _ editor.Recommender = (*recommend.Cache)(nil)

type rawFetcher struct {
	calls int
	body  []byte
	err   error
}

func (f *rawFetcher) FetchRaw(context.Context, domain.RecommendationRequest) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

// unreachableRedis 指向一个没有监听的端口，所有命令都会立即失败
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCache_HypotheticalRequestsBypassRedis(t *testing.T) {
	next := &rawFetcher{body: []byte(`{"available": [{"emp_id": 10}]}`)}
	cache := recommend.NewCache(unreachableRedis(t), next, time.Minute, nil)

	req := domain.RecommendationRequest{
		ScheduleID: 1, PositionID: 1, ShiftID: 1, Date: "2024-01-01",
		Changes: []domain.PendingChange{{Key: "k", Action: domain.ActionAssign, PositionID: 1, Date: "2024-01-01", ShiftID: 2, EmpID: 10}},
	}
	recs, err := cache.FetchRecommendations(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, recs.Available, 1)
	assert.Equal(t, 1, next.calls)
}

func TestCache_FallsBackWhenRedisIsDown(t *testing.T) {
	next := &rawFetcher{body: []byte(`{"cross_position": [{"emp_id": 12}]}`)}
	cache := recommend.NewCache(unreachableRedis(t), next, time.Minute, nil)

	recs, err := cache.FetchRecommendations(context.Background(), domain.RecommendationRequest{
		ScheduleID: 1, PositionID: 1, ShiftID: 1, Date: "2024-01-01",
	})
	require.NoError(t, err)

	require.Len(t, recs.CrossPosition, 1)
	assert.Equal(t, 1, next.calls)
}

func TestCache_PropagatesUpstreamErrors(t *testing.T) {
	upstream := errors.New("推荐服务超时")
	cache := recommend.NewCache(nil, &rawFetcher{err: upstream}, time.Minute, nil)

	_, err := cache.FetchRecommendations(context.Background(), domain.RecommendationRequest{ScheduleID: 1})
	assert.ErrorIs(t, err, upstream)
	assert.NoError(t, cache.Invalidate(context.Background(), 1))
}
