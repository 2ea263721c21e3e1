package domain

import "time"

type AssignmentType string

const (
	AssignmentTypeRegular  AssignmentType = "regular"
	AssignmentTypeFlexible AssignmentType = "flexible"
	AssignmentTypeCover    AssignmentType = "cover"
)

// Assignment 是已经提交到数据库的排班
type Assignment struct {
	ID              int64          `json:"id"`
	EmpID           int64          `json:"emp_id"`
	PositionID      int64          `json:"position_id"`
	ShiftID         int64          `json:"shift_id"`
	WorkDate        string         `json:"work_date"`
	CustomStartTime *string        `json:"custom_start_time,omitempty"`
	CustomEndTime   *string        `json:"custom_end_time,omitempty"`
	AssignmentType  AssignmentType `json:"assignment_type"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (a *Assignment) Slot() Slot {
	return Slot{PositionID: a.PositionID, Date: a.WorkDate, ShiftID: a.ShiftID}
}
