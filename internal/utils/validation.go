package utils

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

func parseShiftClock(t string) (time.Time, error) {
	if len(t) > 5 {
		return time.Parse("15:04:05", t)
	}
	return time.Parse("15:04", t)
}

// shiftInterval 把班次换算成从当天零点开始的分钟区间，跨夜的班次结束时间会超过 24 小时
func shiftInterval(shift *domain.Shift) (int, int, error) {
	startTime, err := parseShiftClock(shift.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("班次 %s 的开始时间格式错误", shift.Name)
	}
	endTime, err := parseShiftClock(shift.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("班次 %s 的结束时间格式错误", shift.Name)
	}

	start := startTime.Hour()*60 + startTime.Minute()
	end := endTime.Hour()*60 + endTime.Minute()
	if end <= start {
		end += 24 * 60
	}
	return start, end, nil
}

// ValidatePositionShiftTime 检查岗位中非弹性班次的时间格式，以及班次之间是否重叠
func ValidatePositionShiftTime(position *domain.Position) error {
	type interval struct {
		name       string
		start, end int
	}

	var intervals []interval
	for i := range position.Shifts {
		shift := &position.Shifts[i]

		start, end, err := shiftInterval(shift)
		if err != nil {
			return err
		}
		if start == end-24*60 {
			return fmt.Errorf("班次 %s 的开始时间和结束时间不能相同", shift.Name)
		}
		// 弹性班次本来就是由相邻班次合成的，允许重叠
		if shift.IsFlexible {
			continue
		}
		intervals = append(intervals, interval{name: shift.Name, start: start, end: end})
	}

	// 检查各个班次之间的时间是否冲突，跨夜班次还需要和第二天的班次比较
	for i := 0; i < len(intervals); i++ {
		for j := i + 1; j < len(intervals); j++ {
			a, b := intervals[i], intervals[j]
			for _, offset := range []int{-24 * 60, 0, 24 * 60} {
				if a.start < b.end+offset && b.start+offset < a.end {
					return fmt.Errorf("班次 %s 和班次 %s 之间的时间冲突", a.name, b.name)
				}
			}
		}
	}
	return nil
}

func ValidateAvailabilityWithPosition(availability *domain.Availability, position *domain.Position) error {
	for i, item := range availability.Items {
		shift := position.FindShift(item.ShiftID)
		if shift == nil {
			return fmt.Errorf("第 %d 项的班次不属于岗位 %s", i+1, position.Name)
		}

		for _, day := range item.Days {
			if day < 1 || day > 7 {
				return fmt.Errorf("第 %d 项包含无效的日期 %d", i+1, day)
			}
		}
	}

	return nil
}

func getAvailabilityByEmpID(availabilities []*domain.Availability, empID int64) *domain.Availability {
	for _, availability := range availabilities {
		if availability.EmpID == empID {
			return availability
		}
	}
	return nil
}

// ValidateAssignmentsWithAvailability 检查每个排班的员工在那一天的那个班次是否有空
func ValidateAssignmentsWithAvailability(assignments []domain.Assignment, availabilities []*domain.Availability) error {
	for _, assignment := range assignments {
		availability := getAvailabilityByEmpID(availabilities, assignment.EmpID)
		if availability == nil {
			return fmt.Errorf("id 为 %d 的员工没有提交空闲时间", assignment.EmpID)
		}

		day, err := domain.DayOfWeek(assignment.WorkDate)
		if err != nil {
			return err
		}

		ok := false
		for _, item := range availability.Items {
			if item.ShiftID == assignment.ShiftID && slices.Contains(item.Days, day) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("id 为 %d 的员工在 %s 的班次 %d 没有空闲时间", assignment.EmpID, assignment.WorkDate, assignment.ShiftID)
		}
	}

	return nil
}

// ValidIfExistsDuplicateAssignment 检查是否有员工在同一天被排了多个班次
func ValidIfExistsDuplicateAssignment(assignments []domain.Assignment) error {
	seen := make(map[string]map[int64]bool)
	for _, assignment := range assignments {
		if _, exists := seen[assignment.WorkDate]; !exists {
			seen[assignment.WorkDate] = make(map[int64]bool)
		}
		if seen[assignment.WorkDate][assignment.EmpID] {
			return fmt.Errorf("id 为 %d 的员工在 %s 被重复排班", assignment.EmpID, assignment.WorkDate)
		}
		seen[assignment.WorkDate][assignment.EmpID] = true
	}
	return nil
}

// ValidateSpanName 检查用户为弹性班次起的名字
func ValidateSpanName(name string) error {
	if len([]rune(name)) > 50 {
		return errors.New("弹性班次名称不能超过 50 个字符")
	}
	return nil
}
