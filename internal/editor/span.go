package editor

import (
	"fmt"
	"strconv"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

// DetectSpanningAttempt 判断一次拖拽是否应理解为"把员工拉伸到两个班次上"。
// 只有同一岗位内、同一天或相邻两天的两个不同格子才算
func DetectSpanningAttempt(from, to *domain.Slot) bool {
	if from == nil || to == nil {
		return false
	}
	if from.PositionID != to.PositionID {
		return false
	}
	if from.Date == to.Date && from.ShiftID == to.ShiftID {
		return false
	}
	if from.Date == to.Date {
		return true
	}

	days, err := domain.DaysBetween(from.Date, to.Date)
	if err != nil {
		return false
	}
	return days == 1 || days == -1
}

// CalculateSpanningDetails 计算合成的弹性班次时间范围，
// 任一班次不存在或本身就是弹性班次时返回 nil
func CalculateSpanningDetails(from, to domain.Slot, shifts []domain.Shift) *domain.SpanDetails {
	fromShift := findShift(shifts, from.ShiftID)
	toShift := findShift(shifts, to.ShiftID)
	if fromShift == nil || toShift == nil {
		return nil
	}
	if fromShift.IsFlexible || toShift.IsFlexible {
		return nil
	}

	days, err := domain.DaysBetween(from.Date, to.Date)
	if err != nil {
		return nil
	}

	details := &domain.SpanDetails{
		PositionID:     from.PositionID,
		SpanningShifts: [2]int64{fromShift.ID, toShift.ID},
	}

	switch days {
	case 0:
		details.StartTime = min(hhmm(fromShift.StartTime), hhmm(toShift.StartTime))
		details.EndTime = max(hhmm(fromShift.EndTime), hhmm(toShift.EndTime))
		details.Date = from.Date
	case 1, -1:
		// 按时间先后确定方向，与拖拽方向无关
		earlier, later := fromShift, toShift
		earlierDate, laterDate := from.Date, to.Date
		if days < 0 {
			earlier, later = toShift, fromShift
			earlierDate, laterDate = to.Date, from.Date
		}
		details.StartTime = hhmm(earlier.StartTime)
		details.EndTime = hhmm(later.EndTime)
		details.IsCrossDay = true
		details.Date = earlierDate
		details.EndDate = &laterDate
	default:
		return nil
	}

	startHour, err := hourOf(details.StartTime)
	if err != nil {
		return nil
	}
	endHour, err := hourOf(details.EndTime)
	if err != nil {
		return nil
	}
	details.IsOvernight = endHour < startHour || details.IsCrossDay

	if details.IsCrossDay {
		details.SuggestedName = fmt.Sprintf("跨日弹性班次 %s-次日%s", details.StartTime, details.EndTime)
	} else {
		details.SuggestedName = fmt.Sprintf("弹性班次 %s-%s", details.StartTime, details.EndTime)
	}

	return details
}

func findShift(shifts []domain.Shift, id int64) *domain.Shift {
	for i := range shifts {
		if shifts[i].ID == id {
			return &shifts[i]
		}
	}
	return nil
}

// hhmm 把 HH:MM:SS 截断为 HH:MM，补零后的字符串可以直接按字典序比较
func hhmm(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

func hourOf(t string) (int, error) {
	if len(t) < 2 {
		return 0, fmt.Errorf("时间格式错误: %q", t)
	}
	return strconv.Atoi(t[:2])
}
