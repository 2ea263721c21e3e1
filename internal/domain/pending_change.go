package domain

import "fmt"

type ChangeAction string

const (
	ActionAssign              ChangeAction = "assign"
	ActionRemove              ChangeAction = "remove"
	ActionCreateFlexibleShift ChangeAction = "createFlexibleShift"
	ActionError               ChangeAction = "error"
)

// PendingChange 是尚未提交的排班修改，只存在于编辑会话中
type PendingChange struct {
	Key             string       `json:"key"`
	Action          ChangeAction `json:"action" validate:"required,oneof=assign remove"`
	PositionID      int64        `json:"positionId" validate:"required,gt=0"`
	Date            string       `json:"date" validate:"required,datetime=2006-01-02"`
	ShiftID         int64        `json:"shiftId" validate:"required,gt=0"`
	EmpID           int64        `json:"empId" validate:"required,gt=0"`
	EmpName         string       `json:"empName,omitempty"`
	AssignmentID    *int64       `json:"assignmentId,omitempty"`
	CustomStartTime *string      `json:"custom_start_time,omitempty"`
	CustomEndTime   *string      `json:"custom_end_time,omitempty"`

	IsApplied bool `json:"isApplied,omitempty"`
	IsResize  bool `json:"isResize,omitempty"`

	IsAutofilled     bool     `json:"isAutofilled,omitempty"`
	IsSaved          bool     `json:"isSaved,omitempty"`
	AutofillCategory Category `json:"autofillCategory,omitempty"`
	IsCrossPosition  bool     `json:"isCrossPosition,omitempty"`
	IsCrossSite      bool     `json:"isCrossSite,omitempty"`
	IsFlexible       bool     `json:"isFlexible,omitempty"`
}

func (c *PendingChange) Slot() Slot {
	return Slot{PositionID: c.PositionID, Date: c.Date, ShiftID: c.ShiftID}
}

// ChangeKey 生成确定性的复合键，相同的操作会覆盖同一个键
func ChangeKey(action ChangeAction, empID int64, slot Slot) string {
	return fmt.Sprintf("%s-%d-%d-%s-%d", action, empID, slot.PositionID, slot.Date, slot.ShiftID)
}
