package domain

import "time"

// Schedule 表示一周的排班表，WeekStart 必须是周一
type Schedule struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	WeekStart   string    `json:"weekStart"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
