package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Recommender 是外部推荐服务
type Recommender interface {
	FetchRecommendations(ctx context.Context, req domain.RecommendationRequest) (*domain.Recommendations, error)
}

// 自动填充时依次尝试的候选分组
var autofillCategories = []domain.Category{
	domain.CategoryAvailable,
	domain.CategoryFlexible,
	domain.CategoryCrossPosition,
	domain.CategoryOtherSite,
}

type AutofillOptions struct {
	BatchSize   int           // 每批写入 store 的修改数量，仅影响界面动画
	BatchDelay  time.Duration // 批次之间的间隔
	Concurrency int           // 同时向推荐服务发起的请求数
}

type AutofillInput struct {
	ScheduleID int64
	WeekStart  string
	Positions  []domain.Position
	Committed  []domain.Assignment
}

type Shortfall struct {
	Slot     domain.Slot `json:"slot"`
	Required int32       `json:"required"`
	Current  int32       `json:"current"`
	Missing  int32       `json:"missing"`
}

type AutofillOutcome string

const (
	AutofillNothingToFill   AutofillOutcome = "nothing_to_fill"
	AutofillFullyFilled     AutofillOutcome = "fully_filled"
	AutofillPartiallyFilled AutofillOutcome = "partially_filled"
	AutofillNoCandidates    AutofillOutcome = "no_candidates"
)

type AutofillReport struct {
	Filled  int     `json:"filled"`
	Total   int     `json:"total"`
	Skipped int     `json:"skipped"` // 推荐请求失败而被跳过的格子数
	Entries []Entry `json:"entries"`
}

func (r *AutofillReport) Outcome() AutofillOutcome {
	switch {
	case r.Total == 0:
		return AutofillNothingToFill
	case r.Filled >= r.Total:
		return AutofillFullyFilled
	case r.Filled > 0:
		return AutofillPartiallyFilled
	default:
		return AutofillNoCandidates
	}
}

type Autofiller struct {
	recommender Recommender
	opts        AutofillOptions
	logger      *slog.Logger
}

func NewAutofiller(recommender Recommender, opts AutofillOptions, logger *slog.Logger) *Autofiller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Autofiller{
		recommender: recommender,
		opts:        opts,
		logger:      logger,
	}
}

// ComputeShortfalls 计算一个岗位在一周内每个 (班次, 日期) 的缺口，
// 需求为 0 表示当天不需要人，直接跳过
func ComputeShortfalls(weekStart string, position domain.Position, committed []domain.Assignment, pending []domain.PendingChange) ([]Shortfall, error) {
	var out []Shortfall

	for _, shift := range position.Shifts {
		for i := 0; i < 7; i++ {
			date, err := domain.AddDays(weekStart, i)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
			}
			day, err := domain.DayOfWeek(date)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
			}

			required := position.Requirements.Required(shift.ID, day)
			if required <= 0 {
				continue
			}

			slot := domain.Slot{PositionID: position.ID, Date: date, ShiftID: shift.ID}

			// 与格子显示的人员一致，已应用的修改和重复的员工都不会被重复计数
			current := int32(len(Resolve(slot, committed, pending)))

			if missing := required - current; missing > 0 {
				out = append(out, Shortfall{Slot: slot, Required: required, Current: current, Missing: missing})
			}
		}
	}

	return out, nil
}

// UsedByDate 统计每天已经被占用的员工，不区分岗位和班次。
// 自动填充在开始前调用一次，初始排班生成用它排除当天已有排班的员工
func UsedByDate(committed []domain.Assignment, pending []domain.PendingChange) map[string]map[int64]bool {
	slots := make(map[domain.Slot]struct{})
	for _, assignment := range committed {
		slots[assignment.Slot()] = struct{}{}
	}
	for _, change := range pending {
		slots[change.Slot()] = struct{}{}
	}

	used := make(map[string]map[int64]bool)
	for slot := range slots {
		for _, empID := range Resolve(slot, committed, pending) {
			if _, exists := used[slot.Date]; !exists {
				used[slot.Date] = make(map[int64]bool)
			}
			used[slot.Date][empID] = true
		}
	}
	return used
}

// Run 填补所有缺口。占用表只在开始时计算一次，之后由单线程的分配循环维护，
// 并发的推荐请求之间不会互相抢占员工
func (a *Autofiller) Run(ctx context.Context, in AutofillInput, store *Store) (*AutofillReport, error) {
	if store == nil || in.ScheduleID <= 0 {
		return nil, ErrNoSchedule
	}
	if _, err := domain.ParseDate(in.WeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSchedule, err)
	}

	pending := unapplied(store.Snapshot())

	var queue []Shortfall
	for _, position := range in.Positions {
		shortfalls, err := ComputeShortfalls(in.WeekStart, position, in.Committed, pending)
		if err != nil {
			return nil, err
		}
		queue = append(queue, shortfalls...)
	}

	report := &AutofillReport{}
	if len(queue) == 0 {
		return report, nil
	}

	results := a.fetchAll(ctx, in.ScheduleID, queue, pending)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	used := UsedByDate(in.Committed, pending)

	var placements []Entry
	for i, shortfall := range queue {
		report.Total += int(shortfall.Missing)

		recs := results[i]
		if recs == nil {
			report.Skipped++
			continue
		}

		if _, exists := used[shortfall.Slot.Date]; !exists {
			used[shortfall.Slot.Date] = make(map[int64]bool)
		}
		usedToday := used[shortfall.Slot.Date]

		placed := int32(0)
	categories:
		for _, category := range autofillCategories {
			for _, candidate := range *recs.List(category) {
				if placed >= shortfall.Missing {
					break categories
				}
				if usedToday[candidate.EmpID] {
					continue
				}

				usedToday[candidate.EmpID] = true
				placed++
				placements = append(placements, autofillEntry(shortfall.Slot, candidate, category))
			}
		}
	}

	for start := 0; start < len(placements); start += a.batchSize(len(placements)) {
		end := min(start+a.batchSize(len(placements)), len(placements))
		if start > 0 && a.opts.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(a.opts.BatchDelay):
			}
		}

		if err := store.AddBatch(placements[start:end]); err != nil {
			return report, err
		}
		report.Filled += end - start
		report.Entries = append(report.Entries, placements[start:end]...)
	}

	a.logger.Info("自动填充完成", "schedule_id", in.ScheduleID, "filled", report.Filled, "total", report.Total, "skipped", report.Skipped)
	return report, nil
}

func (a *Autofiller) batchSize(n int) int {
	if a.opts.BatchSize <= 0 {
		return n
	}
	return a.opts.BatchSize
}

// fetchAll 并发获取每个缺口的推荐，单个请求失败只记录日志，对应位置保持 nil
func (a *Autofiller) fetchAll(ctx context.Context, scheduleID int64, queue []Shortfall, pending []domain.PendingChange) []*domain.Recommendations {
	results := make([]*domain.Recommendations, len(queue))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for i, shortfall := range queue {
		g.Go(func() error {
			req := domain.RecommendationRequest{
				ScheduleID: scheduleID,
				PositionID: shortfall.Slot.PositionID,
				ShiftID:    shortfall.Slot.ShiftID,
				Date:       shortfall.Slot.Date,
				Changes:    pending,
			}

			recs, err := a.recommender.FetchRecommendations(gctx, req)
			if err != nil {
				a.logger.Error("获取推荐失败，跳过该班次",
					"position_id", shortfall.Slot.PositionID,
					"shift_id", shortfall.Slot.ShiftID,
					"date", shortfall.Slot.Date,
					"error", err,
				)
				return nil
			}
			results[i] = recs
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func autofillEntry(slot domain.Slot, candidate domain.RecommendedEmployee, category domain.Category) Entry {
	change := domain.PendingChange{
		Action:           domain.ActionAssign,
		PositionID:       slot.PositionID,
		Date:             slot.Date,
		ShiftID:          slot.ShiftID,
		EmpID:            candidate.EmpID,
		EmpName:          candidate.FullName(),
		IsAutofilled:     true,
		AutofillCategory: category,
	}

	switch category {
	case domain.CategoryFlexible:
		change.IsFlexible = true
		change.IsCrossPosition = candidate.DefaultPositionID != nil && *candidate.DefaultPositionID != slot.PositionID
	case domain.CategoryCrossPosition:
		change.IsCrossPosition = true
	case domain.CategoryOtherSite:
		change.IsCrossSite = true
	}

	key := domain.ChangeKey(domain.ActionAssign, candidate.EmpID, slot)
	change.Key = key
	return Entry{Key: key, Change: change}
}
