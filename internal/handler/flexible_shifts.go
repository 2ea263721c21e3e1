package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/utils"
)

// CreateFlexibleShift 在用户确认之后创建弹性班次，并把被拖拽的员工移动到这个班次上
func (h *Handler) CreateFlexibleShift(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	var req struct {
		Span domain.SpanDetails `json:"span" validate:"required"`
		Name string             `json:"name"`
		Drag domain.DragContext `json:"drag" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Span.SuggestedName
	}
	if name == "" {
		h.errorResponse(w, r, "弹性班次名称不能为空")
		return
	}
	if err := utils.ValidateSpanName(name); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Drag.FromCell.PositionID != req.Span.PositionID {
		h.errorResponse(w, r, "弹性班次必须与被拖拽的员工属于同一岗位")
		return
	}
	if _, err := session.Position(req.Span.PositionID); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	shift, err := h.repository.CreateFlexibleShift(&req.Span, name)
	if err != nil {
		h.repositoryError(w, r, err)
		return
	}
	if err := session.AddShift(*shift); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 新班次本身是弹性班次，不会再被识别为跨班次拖拽
	target := domain.Slot{PositionID: shift.PositionID, Date: req.Span.Date, ShiftID: shift.ID}
	result := session.Builder().Build(req.Drag, target, nil, session.Committed(), session.Store.Snapshot())
	if msg, rejected := result.Rejected(); rejected {
		h.errorResponse(w, r, msg)
		return
	}

	for _, op := range result.Ops {
		if op.Kind != editor.DropOpAdd || op.Change == nil || op.Change.Action != domain.ActionAssign {
			continue
		}
		op.Change.IsFlexible = true
		op.Change.CustomStartTime = &req.Span.StartTime
		op.Change.CustomEndTime = &req.Span.EndTime
	}

	if err := session.Store.ApplyOps(result); err != nil {
		switch {
		case errors.Is(err, editor.ErrMalformedChange), errors.Is(err, editor.ErrRejectedDrop):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.logger.Info("已创建弹性班次", "shift_id", shift.ID, "position_id", shift.PositionID, "date", req.Span.Date)
	h.successResponse(w, r, "创建弹性班次成功", map[string]any{
		"shift":  shift,
		"result": result,
	})
}
