package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/scheduler"
)

// remainingRequirements 把需求减去已有的排班，生成器只负责补齐剩下的缺口
func remainingRequirements(weekStart string, position domain.Position, committed []domain.Assignment, pending []domain.PendingChange) (domain.Requirements, error) {
	shortfalls, err := editor.ComputeShortfalls(weekStart, position, committed, pending)
	if err != nil {
		return nil, err
	}

	requirements := domain.Requirements{}
	for _, shortfall := range shortfalls {
		day, err := domain.DayOfWeek(shortfall.Slot.Date)
		if err != nil {
			return nil, err
		}
		requirements.Set(shortfall.Slot.ShiftID, day, shortfall.Missing)
	}
	return requirements, nil
}

// availabilityFor 只保留岗位内班次的空闲时间，以及仍然在职的员工
func availabilityFor(position domain.Position, availabilities []*domain.Availability, employees map[int64]*domain.Employee) []*domain.Availability {
	out := make([]*domain.Availability, 0, len(availabilities))
	for _, availability := range availabilities {
		if _, exists := employees[availability.EmpID]; !exists {
			continue
		}

		items := make([]domain.AvailabilityItem, 0, len(availability.Items))
		for _, item := range availability.Items {
			if position.FindShift(item.ShiftID) != nil {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}

		filtered := *availability
		filtered.Items = items
		out = append(out, &filtered)
	}
	return out
}

// GenerateSchedule 用遗传算法为一个岗位生成初始排班，结果只作为待提交的修改，不会直接写入数据库
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	var req struct {
		PositionID     int64    `json:"positionID" validate:"required,gt=0"`
		PopulationSize *int32   `json:"populationSize" validate:"omitempty,min=1"`
		MaxGenerations *int32   `json:"maxGenerations" validate:"omitempty,min=1"`
		CrossoverRate  *float64 `json:"crossoverRate" validate:"omitempty,min=0,max=1"`
		MutationRate   *float64 `json:"mutationRate" validate:"omitempty,min=0,max=1"`
		EliteCount     *int32   `json:"eliteCount" validate:"omitempty,min=0"`
		FairnessWeight *float64 `json:"fairnessWeight" validate:"omitempty,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 没有传的参数使用配置中的默认值
	parameters := &scheduler.Parameters{
		PopulationSize: h.config.Scheduler.PopulationSize,
		MaxGenerations: h.config.Scheduler.MaxGenerations,
		CrossoverRate:  h.config.Scheduler.CrossoverRate,
		MutationRate:   h.config.Scheduler.MutationRate,
		EliteCount:     h.config.Scheduler.EliteCount,
		FairnessWeight: h.config.Scheduler.FairnessWeight,
	}
	if req.PopulationSize != nil {
		parameters.PopulationSize = *req.PopulationSize
	}
	if req.MaxGenerations != nil {
		parameters.MaxGenerations = *req.MaxGenerations
	}
	if req.CrossoverRate != nil {
		parameters.CrossoverRate = *req.CrossoverRate
	}
	if req.MutationRate != nil {
		parameters.MutationRate = *req.MutationRate
	}
	if req.EliteCount != nil {
		parameters.EliteCount = *req.EliteCount
	}
	if req.FairnessWeight != nil {
		parameters.FairnessWeight = *req.FairnessWeight
	}

	position, err := session.Position(req.PositionID)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	committed := session.Committed()
	pending := session.Store.Snapshot()

	requirements, err := remainingRequirements(session.Schedule.WeekStart, position, committed, pending)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(requirements) == 0 {
		h.successResponse(w, r, "没有需要排班的班次", []editor.Entry{})
		return
	}
	position.Requirements = requirements

	allEmployees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	employees := make([]*domain.Employee, 0, len(allEmployees))
	employeeByID := make(map[int64]*domain.Employee, len(allEmployees))
	for _, employee := range allEmployees {
		if !employee.IsActive {
			continue
		}
		employees = append(employees, employee)
		employeeByID[employee.ID] = employee
	}

	availabilities, err := h.repository.GetAllAvailabilityByScheduleID(session.Schedule.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	s, err := scheduler.New(
		parameters,
		session.Schedule.WeekStart,
		&position,
		employees,
		availabilityFor(position, availabilities, employeeByID),
		editor.UsedByDate(committed, pending),
	)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignments, err := s.Schedule()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	entries := make([]editor.Entry, 0, len(assignments))
	for _, assignment := range assignments {
		slot := assignment.Slot()
		key := domain.ChangeKey(domain.ActionAssign, assignment.EmpID, slot)

		change := domain.PendingChange{
			Key:        key,
			Action:     domain.ActionAssign,
			PositionID: slot.PositionID,
			Date:       slot.Date,
			ShiftID:    slot.ShiftID,
			EmpID:      assignment.EmpID,
		}
		if employee, exists := employeeByID[assignment.EmpID]; exists {
			change.EmpName = employee.FullName()
			change.IsCrossPosition = employee.DefaultPositionID != nil && *employee.DefaultPositionID != position.ID
		}
		entries = append(entries, editor.Entry{Key: key, Change: change})
	}

	if err := session.Store.AddBatch(entries); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.logger.Info("已生成初始排班", "position_id", position.ID, "count", len(entries))
	h.successResponse(w, r, "自动排班成功", entries)
}
