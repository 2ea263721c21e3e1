package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/recommend"
)

// GetRecommendations 获取格子的推荐并按当前的修改调整。
// 请求不带待提交修改，这样可以命中缓存，调整在本地完成
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	slot, err := h.slotFromQuery(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := checkSlot(session, slot); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	token := session.Tracker.Issue(slot)

	raw, err := h.recommender.FetchRecommendations(r.Context(), domain.RecommendationRequest{
		ScheduleID: session.Schedule.ID,
		PositionID: slot.PositionID,
		ShiftID:    slot.ShiftID,
		Date:       slot.Date,
	})
	if err != nil {
		h.logger.Error("获取推荐失败", "slot", slot.String(), "error", err)
		switch {
		case errors.Is(err, recommend.ErrUnavailable):
			h.errorResponse(w, r, err.Error())
		default:
			h.errorResponse(w, r, "获取推荐失败")
		}
		return
	}

	// 期间同一个格子又发起了新的请求，这次的结果作废
	if !session.Tracker.Accept(slot, token, raw) {
		h.errorResponse(w, r, "推荐结果已过期")
		return
	}

	reconciled, _ := session.Recommendations(slot)
	h.successResponse(w, r, "获取推荐成功", reconciled)
}
