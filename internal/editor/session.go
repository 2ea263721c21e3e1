package editor

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

// Session 是当前唯一打开的排班编辑会话
type Session struct {
	Schedule domain.Schedule
	Store    *Store
	Tracker  *RecommendationTracker

	mu        sync.RWMutex
	positions []domain.Position
	committed []domain.Assignment
	builder   *Builder
	drag      *DragSession
}

func NewSession(schedule domain.Schedule, positions []domain.Position, committed []domain.Assignment, allowFlexible bool) (*Session, error) {
	if schedule.ID <= 0 {
		return nil, ErrNoSchedule
	}
	weekStart, err := domain.ParseDate(schedule.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSchedule, err)
	}
	if weekStart.Weekday() != time.Monday {
		return nil, fmt.Errorf("%w: 排班表的起始日期 %s 不是周一", ErrNoSchedule, schedule.WeekStart)
	}

	s := &Session{
		Schedule:  schedule,
		Store:     NewStore(),
		Tracker:   NewRecommendationTracker(),
		positions: make([]domain.Position, len(positions)),
		committed: slices.Clone(committed),
	}
	for i, position := range positions {
		position.Shifts = slices.Clone(position.Shifts)
		s.positions[i] = position
	}
	s.builder = NewBuilder(s.shiftsOf, allowFlexible)
	s.drag = NewDragSession(s.builder)

	return s, nil
}

func (s *Session) shiftsOf(positionID int64) []domain.Shift {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, position := range s.positions {
		if position.ID == positionID {
			return slices.Clone(position.Shifts)
		}
	}
	return nil
}

func (s *Session) Positions() []domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.positions)
}

func (s *Session) Position(positionID int64) (domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, position := range s.positions {
		if position.ID == positionID {
			return position, nil
		}
	}
	return domain.Position{}, fmt.Errorf("%w: %d", ErrUnknownPosition, positionID)
}

// AddShift 在弹性班次创建成功之后把它加入岗位
func (s *Session) AddShift(shift domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.positions {
		if s.positions[i].ID == shift.PositionID {
			s.positions[i].Shifts = append(s.positions[i].Shifts, shift)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownPosition, shift.PositionID)
}

func (s *Session) Committed() []domain.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.committed)
}

// Refresh 在后端提交成功后用最新的排班替换本地数据
func (s *Session) Refresh(committed []domain.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.committed = slices.Clone(committed)
}

func (s *Session) Occupancy(slot domain.Slot) Occupancy {
	return Resolve(slot, s.Committed(), s.Store.Snapshot())
}

// Cancel 放弃某个岗位上所有未提交的修改
func (s *Session) Cancel(positionID int64) {
	s.Store.ClearForPosition(positionID)
}

func (s *Session) Builder() *Builder {
	return s.builder
}

func (s *Session) Drag() *DragSession {
	return s.drag
}

// Recommendations 根据当前的修改调整格子最近一次的推荐结果
func (s *Session) Recommendations(slot domain.Slot) (*ReconciledRecommendations, bool) {
	raw, ok := s.Tracker.Latest(slot)
	if !ok {
		return nil, false
	}
	return Reconcile(slot, raw, s.Store.Snapshot()), true
}

// AutofillInput 不传 positionIDs 时包含所有岗位
func (s *Session) AutofillInput(positionIDs ...int64) (AutofillInput, error) {
	in := AutofillInput{
		ScheduleID: s.Schedule.ID,
		WeekStart:  s.Schedule.WeekStart,
		Committed:  s.Committed(),
	}

	if len(positionIDs) == 0 {
		in.Positions = s.Positions()
		return in, nil
	}
	for _, id := range positionIDs {
		position, err := s.Position(id)
		if err != nil {
			return AutofillInput{}, err
		}
		in.Positions = append(in.Positions, position)
	}
	return in, nil
}
