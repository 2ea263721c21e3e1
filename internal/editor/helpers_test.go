package editor_test

import (
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

func slot(positionID int64, date string, shiftID int64) domain.Slot {
	return domain.Slot{PositionID: positionID, Date: date, ShiftID: shiftID}
}

func committedAt(id, empID int64, s domain.Slot) domain.Assignment {
	return domain.Assignment{
		ID:             id,
		EmpID:          empID,
		PositionID:     s.PositionID,
		ShiftID:        s.ShiftID,
		WorkDate:       s.Date,
		AssignmentType: domain.AssignmentTypeRegular,
	}
}

func change(action domain.ChangeAction, empID int64, s domain.Slot) domain.PendingChange {
	return domain.PendingChange{
		Key:        domain.ChangeKey(action, empID, s),
		Action:     action,
		PositionID: s.PositionID,
		Date:       s.Date,
		ShiftID:    s.ShiftID,
		EmpID:      empID,
	}
}

func ptr[T any](v T) *T {
	return &v
}
