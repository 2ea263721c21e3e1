package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/repository"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/utils"
)

// 信息列的表头
const (
	HeaderCode     = "工号"
	HeaderName     = "姓名"
	HeaderEmail    = "邮箱"
	HeaderPosition = "岗位"
	HeaderWorkSite = "工作地点"
)

var requiredHeaders = []string{HeaderCode, HeaderName, HeaderEmail, HeaderPosition}

// Record 是 CSV 中的一行，Shifts 的 key 是 "HH:MM-HH:MM"，value 是可用的星期
type Record struct {
	Code         string
	LastName     string
	FirstName    string
	Email        string
	PositionName string
	WorkSiteName string
	Shifts       map[string][]int32
}

// normalizeShiftHeader 把 "09：00-10：00" 这类全角表头统一成 "09:00-10:00"
func normalizeShiftHeader(header string) string {
	header = strings.ReplaceAll(header, "：", ":")
	header = strings.ReplaceAll(header, "－", "-")
	return strings.Join(strings.Fields(header), "")
}

// splitName 按照姓在前的习惯拆分姓名，复姓不做特殊处理
func splitName(name string) (string, string) {
	runes := []rune(utils.NormalizeName(name))
	if len(runes) <= 1 {
		return string(runes), ""
	}
	return string(runes[:1]), string(runes[1:])
}

func parseDays(cell string) ([]int32, error) {
	days := make([]int32, 0)
	for _, field := range strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == '，' || r == ' ' }) {
		day, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("无法解析天数 %q: %w", field, err)
		}
		if day < 1 || day > 7 {
			return nil, fmt.Errorf("天数 %d 不在 1~7 之间", day)
		}
		if !slices.Contains(days, int32(day)) {
			days = append(days, int32(day))
		}
	}
	slices.Sort(days)
	return days, nil
}

// ParseRecords 读取 CSV，包含 "-" 的表头视为班次列，其余视为信息列
func ParseRecords(in io.Reader) ([]Record, error) {
	reader := csv.NewReader(in)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	shiftColumns := map[int]string{}
	infoColumns := map[string]int{}
	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if strings.Contains(header, "-") || strings.Contains(header, "－") {
			shiftColumns[i] = normalizeShiftHeader(header)
		} else {
			infoColumns[header] = i
		}
	}

	for _, header := range requiredHeaders {
		if _, exists := infoColumns[header]; !exists {
			return nil, fmt.Errorf("缺少信息列 %s", header)
		}
	}
	if len(shiftColumns) == 0 {
		return nil, errors.New("没有班次列")
	}

	cell := func(row []string, header string) string {
		i, exists := infoColumns[header]
		if !exists || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]Record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 行读取失败: %w", line, err)
		}

		lastName, firstName := splitName(cell(row, HeaderName))
		record := Record{
			Code:         strings.ToLower(cell(row, HeaderCode)),
			LastName:     lastName,
			FirstName:    firstName,
			Email:        cell(row, HeaderEmail),
			PositionName: cell(row, HeaderPosition),
			WorkSiteName: cell(row, HeaderWorkSite),
			Shifts:       map[string][]int32{},
		}
		if record.Code == "" || record.LastName == "" {
			return nil, fmt.Errorf("第 %d 行缺少工号或姓名", line)
		}

		for i, shiftHeader := range shiftColumns {
			if i >= len(row) {
				continue
			}
			days, err := parseDays(row[i])
			if err != nil {
				return nil, fmt.Errorf("第 %d 行 %s 列: %w", line, shiftHeader, err)
			}
			if len(days) > 0 {
				record.Shifts[shiftHeader] = days
			}
		}

		records = append(records, record)
	}

	return records, nil
}

func clockPrefix(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}

// BuildAvailability 把记录中的班次列匹配到岗位的班次上，匹配不到的列会被忽略
func BuildAvailability(scheduleID int64, empID int64, record Record, position *domain.Position) *domain.Availability {
	availability := &domain.Availability{
		ScheduleID: scheduleID,
		EmpID:      empID,
		Items:      make([]domain.AvailabilityItem, 0),
	}

	for _, shift := range position.Shifts {
		if shift.IsFlexible {
			continue
		}
		header := clockPrefix(shift.StartTime) + "-" + clockPrefix(shift.EndTime)
		days, exists := record.Shifts[header]
		if !exists {
			continue
		}
		availability.Items = append(availability.Items, domain.AvailabilityItem{
			ShiftID: shift.ID,
			Days:    days,
		})
	}

	return availability
}

// ImportCSV 导入真实的员工以及空闲时间，已经存在的员工只会更新空闲时间
func ImportCSV(r *repository.Repository, path string, scheduleID int64) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	records, err := ParseRecords(file)
	if err != nil {
		return err
	}

	if _, err := r.GetScheduleByID(scheduleID); err != nil {
		return fmt.Errorf("获取排班表失败: %w", err)
	}

	positions, err := r.GetAllPositions()
	if err != nil {
		return fmt.Errorf("获取岗位失败: %w", err)
	}
	positionByName := make(map[string]*domain.Position, len(positions))
	for _, position := range positions {
		positionByName[position.Name] = position
	}

	employees, err := r.GetAllEmployees()
	if err != nil {
		return fmt.Errorf("获取员工失败: %w", err)
	}
	employeeByCode := make(map[string]*domain.Employee, len(employees))
	for _, employee := range employees {
		employeeByCode[employee.Code] = employee
	}

	imported := 0
	for _, record := range records {
		position, exists := positionByName[record.PositionName]
		if !exists {
			slog.Error("岗位不存在", "code", record.Code, "position", record.PositionName)
			continue
		}

		employee, exists := employeeByCode[record.Code]
		if !exists {
			employee = &domain.Employee{
				Code:              record.Code,
				LastName:          record.LastName,
				FirstName:         record.FirstName,
				Email:             record.Email,
				DefaultPositionID: &position.ID,
				WorkSiteName:      record.WorkSiteName,
			}
			if err := r.CreateEmployee(employee); err != nil {
				slog.Error("插入员工失败", "code", record.Code, "error", err)
				continue
			}
			employeeByCode[employee.Code] = employee
		}

		availability := BuildAvailability(scheduleID, employee.ID, record, position)
		if err := utils.ValidateAvailabilityWithPosition(availability, position); err != nil {
			slog.Error("空闲时间不合法", "code", record.Code, "error", err)
			continue
		}
		if err := r.InsertAvailability(availability); err != nil {
			slog.Error("插入空闲时间失败", "code", record.Code, "error", err)
			continue
		}

		imported++
	}

	slog.Info("导入数据完成", slog.Int("total", len(records)), slog.Int("imported", imported))
	return nil
}
