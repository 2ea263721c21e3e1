package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

type sessionView struct {
	Schedule  domain.Schedule        `json:"schedule"`
	Positions []domain.Position      `json:"positions"`
	Committed []domain.Assignment    `json:"committed"`
	Pending   []domain.PendingChange `json:"pending"`
	Version   uint64                 `json:"version"`
	DragState string                 `json:"dragState"`
	Drag      *domain.DragContext    `json:"drag,omitempty"`
}

func (h *Handler) viewOf(session *editor.Session) sessionView {
	h.dragMu.Lock()
	drag := session.Drag()
	state, ctx := drag.State().String(), drag.Context()
	h.dragMu.Unlock()

	return sessionView{
		Schedule:  session.Schedule,
		Positions: session.Positions(),
		Committed: session.Committed(),
		Pending:   session.Store.Snapshot(),
		Version:   session.Store.Version(),
		DragState: state,
		Drag:      ctx,
	}
}

func (h *Handler) GetAllSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.repository.GetAllSchedules()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排班表成功", schedules)
}

// OpenSession 打开一张排班表，已经打开的会话以及其中未提交的修改会被丢弃
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScheduleID int64 `json:"scheduleID" validate:"required,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule, err := h.repository.GetScheduleByID(req.ScheduleID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "排班表不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	positions, err := h.repository.GetAllPositions()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	values := make([]domain.Position, 0, len(positions))
	for _, position := range positions {
		values = append(values, *position)
	}

	committed, err := h.repository.GetAssignmentsByWeek(schedule.WeekStart)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	session, err := editor.NewSession(*schedule, values, committed, true)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.mu.Lock()
	h.session = session
	h.mu.Unlock()

	h.logger.Info("已打开排班表", "schedule_id", schedule.ID, "week_start", schedule.WeekStart)
	h.successResponse(w, r, "打开排班表成功", h.viewOf(session))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	h.successResponse(w, r, "获取排班表成功", h.viewOf(session))
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	h.mu.Lock()
	if h.session == session {
		h.session = nil
	}
	h.mu.Unlock()

	h.successResponse(w, r, "关闭排班表成功", nil)
}

// slotFromQuery 从 positionID、date、shiftID 三个查询参数中解析格子
func (h *Handler) slotFromQuery(r *http.Request) (domain.Slot, error) {
	query := r.URL.Query()

	positionID, err := strconv.ParseInt(query.Get("positionID"), 10, 64)
	if err != nil {
		return domain.Slot{}, editor.ErrInvalidSlot
	}
	shiftID, err := strconv.ParseInt(query.Get("shiftID"), 10, 64)
	if err != nil {
		return domain.Slot{}, editor.ErrInvalidSlot
	}

	slot := domain.Slot{PositionID: positionID, Date: query.Get("date"), ShiftID: shiftID}
	if err := h.validate.Struct(slot); err != nil {
		return domain.Slot{}, editor.ErrInvalidSlot
	}
	return slot, nil
}

// checkSlot 确认格子的班次属于会话中的岗位
func checkSlot(session *editor.Session, slot domain.Slot) error {
	position, err := session.Position(slot.PositionID)
	if err != nil {
		return err
	}
	if position.FindShift(slot.ShiftID) == nil {
		return editor.ErrInvalidSlot
	}
	return nil
}
