package editor

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

// Occupancy 是某个格子当前实际的员工列表，保证不含重复的员工
type Occupancy []int64

func (o Occupancy) Contains(empID int64) bool {
	return slices.Contains(o, empID)
}

// Resolve 在已提交的排班之上叠加待提交的修改，计算格子的实际员工:
// 已应用的修改在刷新后已经体现在已提交的排班中，不再参与计算。
//
//  1. 取出已提交排班中属于该格子的员工
//  2. 去掉有 remove 修改的员工
//  3. 加上有 assign 修改的员工
//
// 步骤 3 在步骤 2 之后，所以同一员工同时存在 remove 和 assign 时 assign 生效，
// 交换操作依赖这一点来避免误判重复
func Resolve(slot domain.Slot, committed []domain.Assignment, pending []domain.PendingChange) Occupancy {
	pending = unapplied(pending)

	removed := make(map[int64]bool)
	for _, change := range pending {
		if change.Action == domain.ActionRemove && change.Slot() == slot {
			removed[change.EmpID] = true
		}
	}

	seen := make(map[int64]bool)
	out := Occupancy{}

	for _, assignment := range committed {
		if assignment.Slot() != slot || removed[assignment.EmpID] || seen[assignment.EmpID] {
			continue
		}
		seen[assignment.EmpID] = true
		out = append(out, assignment.EmpID)
	}

	for _, change := range pending {
		if change.Action != domain.ActionAssign || change.Slot() != slot || seen[change.EmpID] {
			continue
		}
		seen[change.EmpID] = true
		out = append(out, change.EmpID)
	}

	return out
}

// ContainsEmployee 是提交任何新排班之前的重复检查
func ContainsEmployee(empID int64, slot domain.Slot, committed []domain.Assignment, pending []domain.PendingChange) bool {
	return Resolve(slot, committed, pending).Contains(empID)
}

// LocateEmployee 根据当前的排班和修改确定员工在格子中的来源，调用方传入的
// IsPending、PendingKey 和 AssignmentID 都会被重新计算。员工不在格子中时返回 ErrNotInCell
func LocateEmployee(emp domain.CellEmployee, slot domain.Slot, committed []domain.Assignment, pending []domain.PendingChange) (domain.CellEmployee, error) {
	pending = unapplied(pending)
	if !Resolve(slot, committed, pending).Contains(emp.EmpID) {
		return emp, fmt.Errorf("%w: %s", ErrNotInCell, displayName(emp))
	}

	out := domain.CellEmployee{EmpID: emp.EmpID, Name: emp.Name}

	// 同时存在已提交的排班和待提交的 assign 时以 assign 为准，
	// 删除它之后原来的 remove 仍然生效
	for _, change := range pending {
		if change.Action != domain.ActionAssign || change.EmpID != emp.EmpID || change.Slot() != slot {
			continue
		}
		out.IsPending = true
		out.PendingKey = change.Key
		if out.Name == "" {
			out.Name = change.EmpName
		}
		return out, nil
	}

	for _, assignment := range committed {
		if assignment.EmpID != emp.EmpID || assignment.Slot() != slot {
			continue
		}
		id := assignment.ID
		out.AssignmentID = &id
		break
	}
	return out, nil
}

// unapplied 过滤掉已应用的修改，不会改动传入的切片
func unapplied(pending []domain.PendingChange) []domain.PendingChange {
	for i, change := range pending {
		if !change.IsApplied {
			continue
		}
		out := make([]domain.PendingChange, 0, len(pending))
		out = append(out, pending[:i]...)
		for _, rest := range pending[i+1:] {
			if !rest.IsApplied {
				out = append(out, rest)
			}
		}
		return out
	}
	return pending
}

// WithHypothetical 返回叠加了假设修改的新列表，不会改动传入的切片
func WithHypothetical(pending []domain.PendingChange, extra ...domain.PendingChange) []domain.PendingChange {
	out := make([]domain.PendingChange, 0, len(pending)+len(extra))
	out = append(out, pending...)
	out = append(out, extra...)
	return out
}

// hypotheticalRemove 构造一条只用于重复检查的 remove
func hypotheticalRemove(empID int64, slot domain.Slot) domain.PendingChange {
	return domain.PendingChange{
		Action:     domain.ActionRemove,
		PositionID: slot.PositionID,
		Date:       slot.Date,
		ShiftID:    slot.ShiftID,
		EmpID:      empID,
	}
}
