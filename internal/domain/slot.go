package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Slot 是 (岗位, 日期, 班次) 三元组，同一个格子可以容纳多名员工
type Slot struct {
	PositionID int64  `json:"positionId" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	ShiftID    int64  `json:"shiftId" validate:"required,gt=0"`
}

func (s Slot) String() string {
	return fmt.Sprintf("%d-%s-%d", s.PositionID, s.Date, s.ShiftID)
}

// ParseDate 解析 ISO 日期，统一使用 UTC 以避免夏令时造成的天数偏差
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func AddDays(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, days)), nil
}

// DaysBetween 返回 b - a 的天数
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// DayOfWeek 返回 1~7，周一为 1，周日为 7
func DayOfWeek(date string) (int32, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	if t.Weekday() == time.Sunday {
		return 7, nil
	}
	return int32(t.Weekday()), nil
}
