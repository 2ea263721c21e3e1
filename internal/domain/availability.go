package domain

import "time"

type AvailabilityItem struct {
	ShiftID int64   `json:"shiftID"`
	Days    []int32 `json:"days"`
}

type Availability struct {
	ID         int64              `json:"id"`
	ScheduleID int64              `json:"scheduleID"`
	EmpID      int64              `json:"empID"`
	Items      []AvailabilityItem `json:"items"`
	CreatedAt  time.Time          `json:"createdAt"`
	Version    int32              `json:"-"`
}
