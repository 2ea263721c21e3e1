package editor

import (
	"sync"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

// RecommendationTracker 为每个格子的推荐请求分配递增的令牌，
// 只有最新一次请求的结果会被接受，旧的响应直接丢弃
type RecommendationTracker struct {
	mu       sync.Mutex
	next     uint64
	latest   map[domain.Slot]uint64
	payloads map[domain.Slot]*domain.Recommendations
}

func NewRecommendationTracker() *RecommendationTracker {
	return &RecommendationTracker{
		latest:   make(map[domain.Slot]uint64),
		payloads: make(map[domain.Slot]*domain.Recommendations),
	}
}

func (t *RecommendationTracker) Issue(slot domain.Slot) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.latest[slot] = t.next
	return t.next
}

// Accept 返回 false 表示响应已经过期
func (t *RecommendationTracker) Accept(slot domain.Slot, token uint64, payload *domain.Recommendations) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest[slot] != token {
		return false
	}
	if payload == nil {
		payload = &domain.Recommendations{}
	}
	t.payloads[slot] = payload.Clone()
	return true
}

// Latest 返回最近一次被接受的原始推荐
func (t *RecommendationTracker) Latest(slot domain.Slot) (*domain.Recommendations, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	payload, exists := t.payloads[slot]
	if !exists {
		return nil, false
	}
	return payload.Clone(), true
}

func (t *RecommendationTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest = make(map[domain.Slot]uint64)
	t.payloads = make(map[domain.Slot]*domain.Recommendations)
}
