package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

const monday = "2024-01-01"

type fakeRecommender struct {
	mu      sync.Mutex
	results map[domain.Slot]*domain.Recommendations
	failing map[domain.Slot]bool
	calls   []domain.RecommendationRequest
}

func newFakeRecommender() *fakeRecommender {
	return &fakeRecommender{
		results: make(map[domain.Slot]*domain.Recommendations),
		failing: make(map[domain.Slot]bool),
	}
}

func (f *fakeRecommender) FetchRecommendations(_ context.Context, req domain.RecommendationRequest) (*domain.Recommendations, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if f.failing[req.Slot()] {
		return nil, errors.New("推荐服务不可用")
	}
	if recs, exists := f.results[req.Slot()]; exists {
		return recs.Clone(), nil
	}
	return &domain.Recommendations{}, nil
}

func candidates(ids ...int64) []domain.RecommendedEmployee {
	out := make([]domain.RecommendedEmployee, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.RecommendedEmployee{EmpID: id, FirstName: "员工", LastName: "测"})
	}
	return out
}

// mondayPosition 只有一个班次，周一需要 required 人
func mondayPosition(id, shiftID int64, required int32) domain.Position {
	requirements := domain.Requirements{}
	requirements.Set(shiftID, 1, required)
	return domain.Position{
		ID:           id,
		Name:         "收银",
		Shifts:       []domain.Shift{{ID: shiftID, PositionID: id, Name: "早班", StartTime: "08:00", EndTime: "16:00"}},
		Requirements: requirements,
	}
}

func TestAutofill_FillsShortfall(t *testing.T) {
	rec := newFakeRecommender()
	rec.results[slot(1, monday, 1)] = &domain.Recommendations{Available: candidates(10, 11, 12)}
	store := editor.NewStore()

	report, err := editor.NewAutofiller(rec, editor.AutofillOptions{}, nil).Run(context.Background(), editor.AutofillInput{
		ScheduleID: 1,
		WeekStart:  monday,
		Positions:  []domain.Position{mondayPosition(1, 1, 2)},
	}, store)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Filled)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, editor.AutofillFullyFilled, report.Outcome())
	assert.Len(t, rec.calls, 1)

	pending := store.Snapshot()
	require.Len(t, pending, 2)
	for _, change := range pending {
		assert.True(t, change.IsAutofilled)
		assert.Equal(t, domain.CategoryAvailable, change.AutofillCategory)
	}
	assert.Equal(t, editor.Occupancy{10, 11}, editor.Resolve(slot(1, monday, 1), nil, pending))
}

func TestComputeShortfalls(t *testing.T) {
	x := slot(1, monday, 1)
	position := mondayPosition(1, 1, 3)
	committed := []domain.Assignment{committedAt(1, 10, x), committedAt(2, 11, x)}
	pending := []domain.PendingChange{
		change(domain.ActionRemove, 10, x),
		change(domain.ActionAssign, 12, x),
	}

	shortfalls, err := editor.ComputeShortfalls(monday, position, committed, pending)
	require.NoError(t, err)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, editor.Shortfall{Slot: x, Required: 3, Current: 2, Missing: 1}, shortfalls[0])

	committed = append(committed, committedAt(3, 13, x))
	shortfalls, err = editor.ComputeShortfalls(monday, position, committed, pending)
	require.NoError(t, err)
	assert.Empty(t, shortfalls)
}

func TestComputeShortfalls_IgnoresAppliedChanges(t *testing.T) {
	x := slot(1, monday, 1)
	position := mondayPosition(1, 1, 2)

	// 10 的移除已经提交，已提交的排班中不再有他
	remove := change(domain.ActionRemove, 10, x)
	remove.IsApplied = true
	shortfalls, err := editor.ComputeShortfalls(monday, position, nil, []domain.PendingChange{remove})
	require.NoError(t, err)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, int32(2), shortfalls[0].Missing)

	// 11 的分配已经提交，再加上一条尚未提交的移除
	assign := change(domain.ActionAssign, 11, x)
	assign.IsApplied = true
	committed := []domain.Assignment{committedAt(1, 10, x), committedAt(2, 11, x)}
	pending := []domain.PendingChange{assign, change(domain.ActionRemove, 10, x)}
	shortfalls, err = editor.ComputeShortfalls(monday, position, committed, pending)
	require.NoError(t, err)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, editor.Shortfall{Slot: x, Required: 2, Current: 1, Missing: 1}, shortfalls[0])
}

func TestAutofill_NoDoubleBookingAcrossPositions(t *testing.T) {
	rec := newFakeRecommender()
	rec.results[slot(1, monday, 1)] = &domain.Recommendations{Available: candidates(10, 11)}
	rec.results[slot(2, monday, 2)] = &domain.Recommendations{Available: candidates(10, 11, 12)}

	// 员工 12 周一已经在岗位 3 上班
	committed := []domain.Assignment{committedAt(1, 12, slot(3, monday, 3))}
	store := editor.NewStore()

	report, err := editor.NewAutofiller(rec, editor.AutofillOptions{Concurrency: 4}, nil).Run(context.Background(), editor.AutofillInput{
		ScheduleID: 1,
		WeekStart:  monday,
		Positions:  []domain.Position{mondayPosition(1, 1, 1), mondayPosition(2, 2, 2)},
		Committed:  committed,
	}, store)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Filled)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, editor.AutofillPartiallyFilled, report.Outcome())

	seen := map[int64]bool{}
	for _, change := range store.Snapshot() {
		assert.False(t, seen[change.EmpID], "员工 %d 被重复分配", change.EmpID)
		seen[change.EmpID] = true
	}
	assert.False(t, seen[12])
}

func TestAutofill_CategoryOrder(t *testing.T) {
	rec := newFakeRecommender()
	rec.results[slot(1, monday, 1)] = &domain.Recommendations{
		Flexible:      candidates(20),
		CrossPosition: candidates(21),
		OtherSite:     candidates(22),
	}
	store := editor.NewStore()

	report, err := editor.NewAutofiller(rec, editor.AutofillOptions{}, nil).Run(context.Background(), editor.AutofillInput{
		ScheduleID: 1,
		WeekStart:  monday,
		Positions:  []domain.Position{mondayPosition(1, 1, 2)},
	}, store)
	require.NoError(t, err)
	require.Equal(t, 2, report.Filled)

	flexible, ok := store.Get(domain.ChangeKey(domain.ActionAssign, 20, slot(1, monday, 1)))
	require.True(t, ok)
	assert.True(t, flexible.IsFlexible)
	assert.Equal(t, domain.CategoryFlexible, flexible.AutofillCategory)

	cross, ok := store.Get(domain.ChangeKey(domain.ActionAssign, 21, slot(1, monday, 1)))
	require.True(t, ok)
	assert.True(t, cross.IsCrossPosition)

	_, ok = store.Get(domain.ChangeKey(domain.ActionAssign, 22, slot(1, monday, 1)))
	assert.False(t, ok)
}

func TestAutofill_FailedFetchIsSkipped(t *testing.T) {
	rec := newFakeRecommender()
	rec.failing[slot(1, monday, 1)] = true
	rec.results[slot(2, monday, 2)] = &domain.Recommendations{Available: candidates(10)}
	store := editor.NewStore()

	report, err := editor.NewAutofiller(rec, editor.AutofillOptions{}, nil).Run(context.Background(), editor.AutofillInput{
		ScheduleID: 1,
		WeekStart:  monday,
		Positions:  []domain.Position{mondayPosition(1, 1, 1), mondayPosition(2, 2, 1)},
	}, store)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Filled)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, store.Len())
}

func TestAutofill_NoCandidates(t *testing.T) {
	store := editor.NewStore()

	report, err := editor.NewAutofiller(newFakeRecommender(), editor.AutofillOptions{}, nil).Run(context.Background(), editor.AutofillInput{
		ScheduleID: 1,
		WeekStart:  monday,
		Positions:  []domain.Position{mondayPosition(1, 1, 1)},
	}, store)
	require.NoError(t, err)

	assert.Equal(t, editor.AutofillNoCandidates, report.Outcome())
	assert.Zero(t, store.Len())
}

func TestAutofill_NothingToFill(t *testing.T) {
	rec := newFakeRecommender()
	position := mondayPosition(1, 1, 0)

	report, err := editor.NewAutofiller(rec, editor.AutofillOptions{}, nil).Run(context.Background(), editor.AutofillInput{
		ScheduleID: 1,
		WeekStart:  monday,
		Positions:  []domain.Position{position},
	}, editor.NewStore())
	require.NoError(t, err)

	assert.Equal(t, editor.AutofillNothingToFill, report.Outcome())
	assert.Empty(t, rec.calls)
}

func TestAutofill_Batches(t *testing.T) {
	rec := newFakeRecommender()
	rec.results[slot(1, monday, 1)] = &domain.Recommendations{Available: candidates(10, 11, 12)}
	store := editor.NewStore()

	report, err := editor.NewAutofiller(rec, editor.AutofillOptions{BatchSize: 1}, nil).Run(context.Background(), editor.AutofillInput{
		ScheduleID: 1,
		WeekStart:  monday,
		Positions:  []domain.Position{mondayPosition(1, 1, 3)},
	}, store)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Filled)
	assert.Equal(t, uint64(3), store.Version())
}

func TestAutofill_RequiresSchedule(t *testing.T) {
	a := editor.NewAutofiller(newFakeRecommender(), editor.AutofillOptions{}, nil)

	_, err := a.Run(context.Background(), editor.AutofillInput{ScheduleID: 1, WeekStart: monday}, nil)
	assert.ErrorIs(t, err, editor.ErrNoSchedule)

	_, err = a.Run(context.Background(), editor.AutofillInput{WeekStart: monday}, editor.NewStore())
	assert.ErrorIs(t, err, editor.ErrNoSchedule)

	_, err = a.Run(context.Background(), editor.AutofillInput{ScheduleID: 1, WeekStart: "下周一"}, editor.NewStore())
	assert.ErrorIs(t, err, editor.ErrNoSchedule)
}
