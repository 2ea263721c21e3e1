package editor

import (
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

type ReconciledRecommendations struct {
	domain.Recommendations
	ActiveCategory domain.Category `json:"active_category"`
}

// Reconcile 根据待提交的修改调整推荐分组，结果只用于展示，
// 不会修改原始推荐和 store，每次依赖变化时都应该重新计算
func Reconcile(slot domain.Slot, raw *domain.Recommendations, pending []domain.PendingChange) *ReconciledRecommendations {
	if raw == nil {
		raw = &domain.Recommendations{}
	}
	recs := raw.Clone()
	pending = unapplied(pending)

	// 冲突的排班即将被移除，员工暂时变为可用
	for _, change := range pending {
		if change.Action != domain.ActionRemove {
			continue
		}
		for _, category := range domain.UnavailableCategories {
			list := recs.List(category)
			kept := (*list)[:0]
			for _, emp := range *list {
				if emp.EmpID == change.EmpID && blockedBy(emp, change) {
					emp.UnavailableReason = ""
					emp.AssignedPositionID = nil
					emp.AssignedShiftID = nil
					emp.AssignedDate = ""
					recs.Available = append(recs.Available, emp)
					continue
				}
				kept = append(kept, emp)
			}
			*list = kept
		}
	}

	// 员工在同一天的另一个班次已有待提交的分配，再分配到这里就会重复排班
	kept := recs.Available[:0]
	var busy []domain.RecommendedEmployee
	for _, emp := range recs.Available {
		if change := pendingElsewhere(emp.EmpID, slot, pending); change != nil {
			positionID, shiftID := change.PositionID, change.ShiftID
			emp.UnavailableReason = domain.ReasonAlreadyAssigned
			emp.AssignedPositionID = &positionID
			emp.AssignedShiftID = &shiftID
			emp.AssignedDate = change.Date
			busy = append(busy, emp)
			continue
		}
		kept = append(kept, emp)
	}
	recs.Available = kept
	recs.UnavailableBusy = append(recs.UnavailableBusy, busy...)

	for _, category := range domain.AllCategories {
		list := recs.List(category)
		*list = dedupe(*list)
	}

	return &ReconciledRecommendations{
		Recommendations: *recs,
		ActiveCategory:  DefaultCategory(recs),
	}
}

// DefaultCategory 与首次加载时的规则一致
func DefaultCategory(recs *domain.Recommendations) domain.Category {
	switch {
	case len(recs.Available) > 0:
		return domain.CategoryAvailable
	case len(recs.CrossPosition) > 0:
		return domain.CategoryCrossPosition
	case len(recs.OtherSite) > 0:
		return domain.CategoryOtherSite
	default:
		return domain.CategoryUnavailable
	}
}

func blockedBy(emp domain.RecommendedEmployee, change domain.PendingChange) bool {
	if emp.AssignedShiftID == nil || *emp.AssignedShiftID != change.ShiftID {
		return false
	}
	if emp.AssignedDate != change.Date {
		return false
	}
	return emp.AssignedPositionID == nil || *emp.AssignedPositionID == change.PositionID
}

func pendingElsewhere(empID int64, slot domain.Slot, pending []domain.PendingChange) *domain.PendingChange {
	for i := range pending {
		change := &pending[i]
		if change.Action == domain.ActionAssign && change.EmpID == empID && change.Date == slot.Date && change.ShiftID != slot.ShiftID {
			return change
		}
	}
	return nil
}

func dedupe(list []domain.RecommendedEmployee) []domain.RecommendedEmployee {
	if list == nil {
		return nil
	}
	seen := make(map[int64]bool, len(list))
	out := list[:0]
	for _, emp := range list {
		if seen[emp.EmpID] {
			continue
		}
		seen[emp.EmpID] = true
		out = append(out, emp)
	}
	return out
}
