package domain

import (
	"time"
)

type Shift struct {
	ID         int64  `json:"id"`
	PositionID int64  `json:"positionID"`
	Name       string `json:"name"`
	StartTime  string `json:"startTime"` // HH:MM 或 HH:MM:SS
	EndTime    string `json:"endTime"`
	IsFlexible bool   `json:"isFlexible"`
	// 仅跨日弹性班次使用，表示结束时间落在第二天
	EndsNextDay bool `json:"endsNextDay"`
}

// Requirements: {shiftID: {day: 人数}}，day 取值 1~7（周一到周日）
type Requirements map[int64]map[int32]int32

func (r Requirements) Required(shiftID int64, day int32) int32 {
	if days, exists := r[shiftID]; exists {
		return days[day]
	}
	return 0
}

func (r Requirements) Set(shiftID int64, day int32, required int32) {
	if _, exists := r[shiftID]; !exists {
		r[shiftID] = map[int32]int32{}
	}
	r[shiftID][day] = required
}

type Position struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Shifts       []Shift      `json:"shifts"`
	Requirements Requirements `json:"requirements"`
	CreatedAt    time.Time    `json:"createdAt"`
	Version      int32        `json:"-"`
}

func (p *Position) FindShift(shiftID int64) *Shift {
	for i := range p.Shifts {
		if p.Shifts[i].ID == shiftID {
			return &p.Shifts[i]
		}
	}
	return nil
}
