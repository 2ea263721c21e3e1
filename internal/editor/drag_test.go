package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

func lookup(shifts []domain.Shift) editor.ShiftLookup {
	return func(int64) []domain.Shift { return shifts }
}

func dragOf(empID int64, name string, assignmentID int64, from domain.Slot) domain.DragContext {
	return domain.DragContext{
		Employee: domain.CellEmployee{EmpID: empID, Name: name, AssignmentID: &assignmentID},
		FromCell: from,
	}
}

func TestBuild_DropOnSameCell(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	b := editor.NewBuilder(lookup(spanShifts), true)

	result := b.Build(dragOf(10, "张三", 1, a), a, nil, []domain.Assignment{committedAt(1, 10, a)}, nil)

	assert.True(t, result.Empty())
}

func TestBuild_Move(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 2)
	committed := []domain.Assignment{committedAt(1, 10, a)}
	store := editor.NewStore()
	b := editor.NewBuilder(lookup(spanShifts), true)

	result := b.Build(dragOf(10, "张三", 1, a), target, nil, committed, store.Snapshot())
	require.Len(t, result.Ops, 2)

	remove := result.Ops[0].Change
	require.NotNil(t, remove)
	assert.Equal(t, domain.ActionRemove, remove.Action)
	require.NotNil(t, remove.AssignmentID)
	assert.Equal(t, int64(1), *remove.AssignmentID)
	assert.Equal(t, domain.ActionAssign, result.Ops[1].Change.Action)

	require.NoError(t, store.ApplyOps(result))
	pending := store.Snapshot()
	assert.Empty(t, editor.Resolve(a, committed, pending))
	assert.Equal(t, editor.Occupancy{10}, editor.Resolve(target, committed, pending))
}

func TestBuild_MoveRejectsDuplicate(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 2)
	committed := []domain.Assignment{committedAt(1, 10, a), committedAt(2, 10, target)}
	store := editor.NewStore()
	b := editor.NewBuilder(lookup(spanShifts), true)

	result := b.Build(dragOf(10, "张三", 1, a), target, nil, committed, nil)

	msg, rejected := result.Rejected()
	require.True(t, rejected)
	assert.Equal(t, editor.ErrDuplicateAssignment.Error(), msg)

	err := store.ApplyOps(result)
	assert.ErrorIs(t, err, editor.ErrRejectedDrop)
	assert.Zero(t, store.Len())
	assert.Zero(t, store.Version())
}

func TestBuild_MoveFromPendingCell(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 2)
	store := editor.NewStore()
	staged := change(domain.ActionAssign, 10, a)
	require.NoError(t, store.AddChange(staged.Key, staged))
	b := editor.NewBuilder(lookup(spanShifts), true)

	drag := domain.DragContext{
		Employee: domain.CellEmployee{EmpID: 10, Name: "张三", IsPending: true, PendingKey: staged.Key},
		FromCell: a,
	}
	result := b.Build(drag, target, nil, nil, store.Snapshot())

	require.Len(t, result.Ops, 2)
	assert.Equal(t, editor.DropOpRemovePending, result.Ops[0].Kind)
	assert.Equal(t, staged.Key, result.Ops[0].Key)

	require.NoError(t, store.ApplyOps(result))
	pending := store.Snapshot()
	require.Len(t, pending, 1)
	assert.Equal(t, domain.ActionAssign, pending[0].Action)
	assert.Equal(t, target, pending[0].Slot())
}

func TestBuild_Swap(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 1)
	committed := []domain.Assignment{committedAt(1, 10, a), committedAt(2, 11, target)}
	store := editor.NewStore()
	b := editor.NewBuilder(lookup(spanShifts), true)

	targetEmp := &domain.CellEmployee{EmpID: 11, Name: "李四", AssignmentID: ptr(int64(2))}
	result := b.Build(dragOf(10, "张三", 1, a), target, targetEmp, committed, nil)

	_, rejected := result.Rejected()
	require.False(t, rejected)
	assert.Len(t, result.Ops, 4)

	require.NoError(t, store.ApplyOps(result))
	pending := store.Snapshot()
	assert.Equal(t, editor.Occupancy{11}, editor.Resolve(a, committed, pending))
	assert.Equal(t, editor.Occupancy{10}, editor.Resolve(target, committed, pending))
	assert.Equal(t, uint64(1), store.Version())
}

func TestBuild_SwapAndSwapBack(t *testing.T) {
	x := slot(1, "2024-01-01", 1)
	y := slot(1, "2024-01-03", 1)
	b := editor.NewBuilder(lookup(spanShifts), true)

	cases := []struct {
		name      string
		committed []domain.Assignment
		staged    []domain.PendingChange
	}{
		{
			name:      "已提交的排班",
			committed: []domain.Assignment{committedAt(1, 10, x), committedAt(2, 11, y)},
		},
		{
			name:   "待提交的修改",
			staged: []domain.PendingChange{change(domain.ActionAssign, 10, x), change(domain.ActionAssign, 11, y)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := editor.NewStore()
			for _, staged := range tc.staged {
				require.NoError(t, store.AddChange(staged.Key, staged))
			}
			// 界面只传员工 ID，来源由当前状态决定
			swap := func(dragged int64, from domain.Slot, other int64, to domain.Slot) {
				drag := domain.DragContext{Employee: domain.CellEmployee{EmpID: dragged}, FromCell: from}
				result := b.Build(drag, to, &domain.CellEmployee{EmpID: other}, tc.committed, store.Snapshot())
				msg, rejected := result.Rejected()
				require.False(t, rejected, msg)
				require.NoError(t, store.ApplyOps(result))
			}

			swap(10, x, 11, y)
			assert.Equal(t, editor.Occupancy{11}, editor.Resolve(x, tc.committed, store.Snapshot()))
			assert.Equal(t, editor.Occupancy{10}, editor.Resolve(y, tc.committed, store.Snapshot()))

			swap(11, x, 10, y)
			assert.Equal(t, editor.Occupancy{10}, editor.Resolve(x, tc.committed, store.Snapshot()))
			assert.Equal(t, editor.Occupancy{11}, editor.Resolve(y, tc.committed, store.Snapshot()))
		})
	}
}

func TestBuild_RejectsEmployeeNotInCell(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 1)
	committed := []domain.Assignment{committedAt(1, 10, a)}
	b := editor.NewBuilder(lookup(spanShifts), true)

	result := b.Build(dragOf(11, "李四", 1, a), target, nil, committed, nil)
	msg, rejected := result.Rejected()
	require.True(t, rejected)
	assert.Contains(t, msg, editor.ErrNotInCell.Error())

	result = b.Build(dragOf(10, "张三", 1, a), target, &domain.CellEmployee{EmpID: 12, Name: "王五"}, committed, nil)
	msg, rejected = result.Rejected()
	require.True(t, rejected)
	assert.Contains(t, msg, "王五")
}

func TestBuild_IgnoresStalePendingKey(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 2)
	committed := []domain.Assignment{committedAt(1, 10, a)}
	store := editor.NewStore()
	unrelated := change(domain.ActionAssign, 11, slot(1, "2024-01-02", 1))
	require.NoError(t, store.AddChange(unrelated.Key, unrelated))
	b := editor.NewBuilder(lookup(spanShifts), true)

	// 界面把已提交的张三当成了别人的待提交修改
	drag := domain.DragContext{
		Employee: domain.CellEmployee{EmpID: 10, Name: "张三", IsPending: true, PendingKey: unrelated.Key},
		FromCell: a,
	}
	result := b.Build(drag, target, nil, committed, store.Snapshot())
	require.Len(t, result.Ops, 2)
	assert.Equal(t, editor.DropOpAdd, result.Ops[0].Kind)

	require.NoError(t, store.ApplyOps(result))
	_, exists := store.Get(unrelated.Key)
	assert.True(t, exists)
	pending := store.Snapshot()
	assert.Empty(t, editor.Resolve(a, committed, pending))
	assert.Equal(t, editor.Occupancy{10}, editor.Resolve(target, committed, pending))
}

func TestBuild_SwapRejectsDuplicate(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 1)
	committed := []domain.Assignment{
		committedAt(1, 10, a),
		committedAt(2, 11, target),
		committedAt(3, 10, target),
	}
	b := editor.NewBuilder(lookup(spanShifts), true)

	targetEmp := &domain.CellEmployee{EmpID: 11, Name: "李四", AssignmentID: ptr(int64(2))}
	result := b.Build(dragOf(10, "张三", 1, a), target, targetEmp, committed, nil)

	msg, rejected := result.Rejected()
	require.True(t, rejected)
	assert.Contains(t, msg, "张三")
}

func TestCheckForDuplicateOnSwap_Symmetric(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-03", 1)
	committed := []domain.Assignment{
		committedAt(1, 10, a),
		committedAt(2, 11, target),
		committedAt(3, 11, a),
	}
	dragged := domain.CellEmployee{EmpID: 10, Name: "张三"}
	other := domain.CellEmployee{EmpID: 11, Name: "李四"}

	forward := editor.CheckForDuplicateOnSwap(dragged, a, other, target, committed, nil)
	backward := editor.CheckForDuplicateOnSwap(other, target, dragged, a, committed, nil)

	require.ErrorIs(t, forward, editor.ErrDuplicateAssignment)
	require.ErrorIs(t, backward, editor.ErrDuplicateAssignment)
	assert.Contains(t, forward.Error(), "李四")
	assert.Contains(t, backward.Error(), "李四")
}

func TestBuild_SpanningAttempt(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-01", 2)
	committed := []domain.Assignment{committedAt(1, 10, a)}
	store := editor.NewStore()

	result := editor.NewBuilder(lookup(spanShifts), true).Build(dragOf(10, "张三", 1, a), target, nil, committed, nil)

	op := result.FlexibleShift()
	require.NotNil(t, op)
	require.NotNil(t, op.Span)
	assert.Equal(t, "06:00", op.Span.StartTime)
	assert.Equal(t, "22:00", op.Span.EndTime)
	require.NotNil(t, op.Drag)
	assert.Equal(t, int64(10), op.Drag.Employee.EmpID)

	// 确认之前不会写入 store
	require.NoError(t, store.ApplyOps(result))
	assert.Zero(t, store.Len())
}

func TestBuild_SpanningDisabledFallsBackToMove(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	target := slot(1, "2024-01-01", 2)
	committed := []domain.Assignment{committedAt(1, 10, a)}

	result := editor.NewBuilder(lookup(spanShifts), false).Build(dragOf(10, "张三", 1, a), target, nil, committed, nil)

	assert.Nil(t, result.FlexibleShift())
	assert.Len(t, result.Ops, 2)
}

func TestDragSession(t *testing.T) {
	a := slot(1, "2024-01-01", 1)
	session := editor.NewDragSession(editor.NewBuilder(lookup(spanShifts), true))

	_, err := session.Drop(a, nil, nil, nil)
	require.ErrorIs(t, err, editor.ErrNotDragging)
	assert.Equal(t, editor.DragIdle, session.State())

	session.Start(dragOf(10, "张三", 1, a))
	assert.Equal(t, editor.DragDragging, session.State())

	preview := session.Over(slot(1, "2024-01-01", 2), false)
	require.NotNil(t, preview)
	assert.Equal(t, editor.DragSpanningPreview, session.State())

	assert.Nil(t, session.Over(slot(1, "2024-01-01", 2), true))
	assert.Equal(t, editor.DragDragging, session.State())

	result, err := session.Drop(slot(1, "2024-01-05", 2), nil, []domain.Assignment{committedAt(1, 10, a)}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Ops, 2)
	assert.Equal(t, editor.DragDropped, session.State())
	assert.Nil(t, session.Context())

	session.Start(dragOf(10, "张三", 1, a))
	session.End()
	assert.Equal(t, editor.DragIdle, session.State())
	assert.Equal(t, "idle", session.State().String())
}
