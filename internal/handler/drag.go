package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

type dragStateView struct {
	State   string              `json:"state"`
	Preview *domain.SpanDetails `json:"preview,omitempty"`
}

func (h *Handler) DragStart(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	var req domain.DragContext
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := checkSlot(session, req.FromCell); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.dragMu.Lock()
	defer h.dragMu.Unlock()

	employee, err := editor.LocateEmployee(req.Employee, req.FromCell, session.Committed(), session.Store.Snapshot())
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	req.Employee = employee

	drag := session.Drag()
	drag.Start(req)

	h.successResponse(w, r, "开始拖拽", dragStateView{State: drag.State().String()})
}

// DragOver 只返回跨班次的预览，不会产生任何修改
func (h *Handler) DragOver(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	var req struct {
		Target   domain.Slot `json:"target" validate:"required"`
		Occupied bool        `json:"occupied"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.dragMu.Lock()
	defer h.dragMu.Unlock()

	drag := session.Drag()
	if drag.Context() == nil {
		h.errorResponse(w, r, editor.ErrNotDragging.Error())
		return
	}
	preview := drag.Over(req.Target, req.Occupied)

	h.successResponse(w, r, "拖拽中", dragStateView{State: drag.State().String(), Preview: preview})
}

func (h *Handler) DragEnd(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	h.dragMu.Lock()
	defer h.dragMu.Unlock()

	drag := session.Drag()
	drag.End()

	h.successResponse(w, r, "已取消拖拽", dragStateView{State: drag.State().String()})
}

// Drop 把拖拽翻译成修改并原子地写入。跨班次的拖拽只返回弹性班次的请求，
// 需要界面确认后调用 CreateFlexibleShift
func (h *Handler) Drop(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	var req struct {
		Target         domain.Slot          `json:"target" validate:"required"`
		TargetEmployee *domain.CellEmployee `json:"targetEmployee"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := checkSlot(session, req.Target); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.dragMu.Lock()
	result, err := session.Drag().Drop(req.Target, req.TargetEmployee, session.Committed(), session.Store.Snapshot())
	h.dragMu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, editor.ErrNotDragging):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if msg, rejected := result.Rejected(); rejected {
		h.errorResponse(w, r, msg)
		return
	}
	if result.Empty() {
		h.successResponse(w, r, "没有产生修改", result)
		return
	}
	if result.FlexibleShift() != nil {
		h.successResponse(w, r, "需要确认是否创建弹性班次", result)
		return
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

	h.successResponse(w, r, "拖拽成功", result)
}
