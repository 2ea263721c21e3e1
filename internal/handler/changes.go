package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

func (h *Handler) GetPendingChanges(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	positionIDParam := r.URL.Query().Get("positionID")
	if positionIDParam == "" {
		h.successResponse(w, r, "获取待提交修改成功", session.Store.Snapshot())
		return
	}

	positionID, err := strconv.ParseInt(positionIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "岗位ID无效")
		return
	}

	h.successResponse(w, r, "获取待提交修改成功", session.Store.ForPosition(positionID))
}

// AddPendingChanges 批量写入修改，没有指定键时使用确定性的复合键，相同的操作会覆盖之前的修改
func (h *Handler) AddPendingChanges(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	var req struct {
		Changes []domain.PendingChange `json:"changes" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	for i := range req.Changes {
		if req.Changes[i].Key == "" {
			req.Changes[i].Key = domain.ChangeKey(req.Changes[i].Action, req.Changes[i].EmpID, req.Changes[i].Slot())
		}
	}

	// 被覆盖的修改不参与重复检查，同一批次中较早的修改会参与
	overwritten := make(map[string]bool, len(req.Changes))
	for _, change := range req.Changes {
		overwritten[change.Key] = true
	}
	overlay := make([]domain.PendingChange, 0)
	for _, change := range session.Store.Snapshot() {
		if !overwritten[change.Key] {
			overlay = append(overlay, change)
		}
	}
	committed := session.Committed()

	entries := make([]editor.Entry, 0, len(req.Changes))
	for _, change := range req.Changes {
		if err := checkSlot(session, change.Slot()); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		if change.Action == domain.ActionAssign && editor.ContainsEmployee(change.EmpID, change.Slot(), committed, overlay) {
			h.errorResponse(w, r, fmt.Sprintf("%s: %d", editor.ErrDuplicateAssignment.Error(), change.EmpID))
			return
		}

		overlay = append(overlay, change)
		entries = append(entries, editor.Entry{Key: change.Key, Change: change})
	}

	if err := session.Store.AddBatch(entries); err != nil {
		switch {
		case errors.Is(err, editor.ErrMalformedChange):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "添加待提交修改成功", entries)
}

func (h *Handler) RemovePendingChange(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	key := chi.URLParam(r, "key")
	if _, exists := session.Store.Get(key); !exists {
		h.errorResponse(w, r, "待提交修改不存在")
		return
	}

	session.Store.RemoveChange(key)

	h.successResponse(w, r, "删除待提交修改成功", nil)
}

func (h *Handler) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	slot, err := h.slotFromQuery(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "获取格子人员成功", map[string]any{
		"slot":   slot,
		"empIDs": session.Occupancy(slot),
	})
}

func (h *Handler) CancelPosition(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)
	position := r.Context().Value(PositionCtx).(domain.Position)

	session.Cancel(position.ID)

	h.successResponse(w, r, "已放弃该岗位的所有修改", nil)
}
