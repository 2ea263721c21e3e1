package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

func busyAt(empID int64, s domain.Slot) domain.RecommendedEmployee {
	return domain.RecommendedEmployee{
		EmpID:              empID,
		FirstName:          "五",
		LastName:           "王",
		UnavailableReason:  "conflict",
		AssignedPositionID: ptr(s.PositionID),
		AssignedShiftID:    ptr(s.ShiftID),
		AssignedDate:       s.Date,
	}
}

func TestReconcile_PendingRemoveFreesEmployee(t *testing.T) {
	viewing := slot(1, monday, 2)
	blocking := slot(1, monday, 1)
	raw := &domain.Recommendations{UnavailableBusy: []domain.RecommendedEmployee{busyAt(10, blocking)}}
	pending := []domain.PendingChange{change(domain.ActionRemove, 10, blocking)}

	got := editor.Reconcile(viewing, raw, pending)

	require.Len(t, got.Available, 1)
	assert.Equal(t, int64(10), got.Available[0].EmpID)
	assert.Empty(t, got.Available[0].UnavailableReason)
	assert.Nil(t, got.Available[0].AssignedShiftID)
	assert.Empty(t, got.UnavailableBusy)
	assert.Equal(t, domain.CategoryAvailable, got.ActiveCategory)

	// 原始推荐不受影响，撤销修改后重新计算即可恢复
	require.Len(t, raw.UnavailableBusy, 1)
	restored := editor.Reconcile(viewing, raw, nil)
	assert.Empty(t, restored.Available)
	require.Len(t, restored.UnavailableBusy, 1)
	assert.Equal(t, "conflict", restored.UnavailableBusy[0].UnavailableReason)
}

func TestReconcile_RemoveForOtherShiftKeepsEmployeeBlocked(t *testing.T) {
	raw := &domain.Recommendations{UnavailableHard: []domain.RecommendedEmployee{busyAt(10, slot(1, monday, 1))}}
	pending := []domain.PendingChange{change(domain.ActionRemove, 10, slot(1, monday, 3))}

	got := editor.Reconcile(slot(1, monday, 2), raw, pending)

	assert.Empty(t, got.Available)
	assert.Len(t, got.UnavailableHard, 1)
}

func TestReconcile_PendingAssignMakesEmployeeBusy(t *testing.T) {
	raw := &domain.Recommendations{Available: candidates(10, 11)}
	pending := []domain.PendingChange{change(domain.ActionAssign, 10, slot(2, monday, 1))}

	got := editor.Reconcile(slot(1, monday, 2), raw, pending)

	require.Len(t, got.Available, 1)
	assert.Equal(t, int64(11), got.Available[0].EmpID)
	require.Len(t, got.UnavailableBusy, 1)
	busy := got.UnavailableBusy[0]
	assert.Equal(t, domain.ReasonAlreadyAssigned, busy.UnavailableReason)
	require.NotNil(t, busy.AssignedShiftID)
	assert.Equal(t, int64(1), *busy.AssignedShiftID)
	require.NotNil(t, busy.AssignedPositionID)
	assert.Equal(t, int64(2), *busy.AssignedPositionID)
	assert.Equal(t, monday, busy.AssignedDate)

	// 分配在同一个班次时不视为冲突
	same := editor.Reconcile(slot(1, monday, 1), raw, pending)
	assert.Len(t, same.Available, 2)
}

func TestReconcile_Dedupes(t *testing.T) {
	raw := &domain.Recommendations{
		Available:       candidates(10, 10, 11),
		UnavailableBusy: []domain.RecommendedEmployee{busyAt(12, slot(1, monday, 1)), busyAt(12, slot(1, monday, 1))},
	}

	got := editor.Reconcile(slot(1, monday, 2), raw, nil)

	assert.Len(t, got.Available, 2)
	assert.Len(t, got.UnavailableBusy, 1)
}

func TestReconcile_NilPayload(t *testing.T) {
	got := editor.Reconcile(slot(1, monday, 1), nil, nil)

	require.NotNil(t, got)
	assert.Equal(t, domain.CategoryUnavailable, got.ActiveCategory)
}

func TestDefaultCategory(t *testing.T) {
	tests := []struct {
		name string
		recs domain.Recommendations
		want domain.Category
	}{
		{"available first", domain.Recommendations{Available: candidates(1), CrossPosition: candidates(2)}, domain.CategoryAvailable},
		{"cross position", domain.Recommendations{CrossPosition: candidates(2), OtherSite: candidates(3)}, domain.CategoryCrossPosition},
		{"other site", domain.Recommendations{OtherSite: candidates(3)}, domain.CategoryOtherSite},
		{"only flexible", domain.Recommendations{Flexible: candidates(4)}, domain.CategoryUnavailable},
		{"empty", domain.Recommendations{}, domain.CategoryUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, editor.DefaultCategory(&tt.recs))
		})
	}
}
