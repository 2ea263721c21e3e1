package domain

type ViolationType string

const (
	ViolationRest        ViolationType = "rest_violation"
	ViolationWeeklyHours ViolationType = "weekly_hours_violation"
	ViolationDailyHours  ViolationType = "daily_hours_violation"
)

// Violation 由校验服务返回，不同类型使用不同的字段
type Violation struct {
	Type    ViolationType `json:"type"`
	EmpID   int64         `json:"emp_id"`
	EmpName string        `json:"emp_name,omitempty"`
	Date    string        `json:"date,omitempty"`

	// rest_violation
	RestHours     float64 `json:"rest_hours,omitempty"`
	RequiredHours float64 `json:"required_hours,omitempty"`
	PreviousShift string  `json:"previous_shift,omitempty"`
	NextShift     string  `json:"next_shift,omitempty"`

	// weekly_hours_violation / daily_hours_violation
	TotalHours float64 `json:"total_hours,omitempty"`
	MaxHours   float64 `json:"max_hours,omitempty"`
}
