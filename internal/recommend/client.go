package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

var ErrUnavailable = errors.New("推荐服务暂时不可用")

// StatusError 表示服务返回了非 2xx 的状态码
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("服务返回状态码 %d: %s", e.StatusCode, e.Body)
}

type Options struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// Client 访问外部的推荐服务和校验服务，两者共用一个熔断器
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}

	settings := gobreaker.Settings{
		Name:    "recommendation",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		// 4xx 是调用方的问题，不应该让熔断器打开
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](settings)

	return c
}

// FetchRecommendations 获取某个格子的候选员工，req.Changes 不为空时服务会在这些假设修改的基础上计算
func (c *Client) FetchRecommendations(ctx context.Context, req domain.RecommendationRequest) (*domain.Recommendations, error) {
	body, err := c.FetchRaw(ctx, req)
	if err != nil {
		return nil, err
	}

	recs := &domain.Recommendations{}
	if err := json.Unmarshal(body, recs); err != nil {
		return nil, fmt.Errorf("无法解析推荐结果: %w", err)
	}
	return recs, nil
}

// FetchRaw 返回未解析的响应体，缓存层直接保存它
func (c *Client) FetchRaw(ctx context.Context, req domain.RecommendationRequest) ([]byte, error) {
	return c.post(ctx, "/recommendations", req)
}

// ValidateChanges 返回空列表表示没有阻止提交的问题
func (c *Client) ValidateChanges(ctx context.Context, scheduleID int64, changes []domain.PendingChange) ([]domain.Violation, error) {
	payload := struct {
		ScheduleID int64                  `json:"schedule_id"`
		Changes    []domain.PendingChange `json:"changes"`
	}{
		ScheduleID: scheduleID,
		Changes:    changes,
	}

	body, err := c.post(ctx, "/validate", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Violations []domain.Violation `json:"violations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("无法解析校验结果: %w", err)
	}
	if resp.Violations == nil {
		resp.Violations = []domain.Violation{}
	}
	return resp.Violations, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		return body, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}
