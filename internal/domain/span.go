package domain

// SpanDetails 描述一次跨班次拖拽所合成的弹性班次
type SpanDetails struct {
	PositionID     int64    `json:"positionId" validate:"required,gt=0"`
	StartTime      string   `json:"start_time" validate:"required"`
	EndTime        string   `json:"end_time" validate:"required"`
	SpanningShifts [2]int64 `json:"spanning_shifts"`
	IsOvernight    bool     `json:"is_overnight"`
	IsCrossDay     bool     `json:"is_cross_day"`
	SuggestedName  string   `json:"suggested_name"`
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	EndDate        *string  `json:"end_date"`
}
