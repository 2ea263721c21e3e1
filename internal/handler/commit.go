package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/recommend"
)

// CommitPosition 提交一个岗位上尚未应用的修改：先交给校验服务检查，
// 没有违规时在一个事务中写入数据库，再刷新本地的排班并通知相关员工
func (h *Handler) CommitPosition(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)
	position := r.Context().Value(PositionCtx).(domain.Position)

	changes := make([]domain.PendingChange, 0)
	for _, change := range session.Store.ForPosition(position.ID) {
		if change.IsApplied {
			continue
		}
		changes = append(changes, change)
	}
	if len(changes) == 0 {
		h.errorResponse(w, r, "没有需要提交的修改")
		return
	}

	violations, err := h.checker.ValidateChanges(r.Context(), session.Schedule.ID, changes)
	if err != nil {
		h.logger.Error("校验修改失败", "position_id", position.ID, "error", err)
		switch {
		case errors.Is(err, recommend.ErrUnavailable):
			h.errorResponse(w, r, err.Error())
		default:
			h.errorResponse(w, r, "校验修改失败")
		}
		return
	}
	if len(violations) > 0 {
		h.rejectedResponse(w, r, "存在违反排班规则的修改", violations)
		return
	}

	if err := h.repository.CommitAssignmentChanges(changes); err != nil {
		h.repositoryError(w, r, err)
		return
	}

	committed, err := h.repository.GetAssignmentsByWeek(session.Schedule.WeekStart)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	session.Refresh(committed)
	session.Store.ApplyForPosition(position.ID)

	keys := make([]string, 0, len(changes))
	for _, change := range changes {
		keys = append(keys, change.Key)
	}
	session.Store.ClearAutofillFlags(keys...)

	// 已提交的排班会影响推荐结果
	if err := h.recommender.Invalidate(r.Context(), session.Schedule.ID); err != nil {
		h.logger.Warn("清除推荐缓存失败", "schedule_id", session.Schedule.ID, "error", err)
	}

	h.notifyScheduleChanged(session.Schedule, position, changes)

	h.logger.Info("已提交修改", "schedule_id", session.Schedule.ID, "position_id", position.ID, "count", len(changes))
	h.successResponse(w, r, "提交成功", map[string]any{
		"committed": len(changes),
		"pending":   session.Store.ForPosition(position.ID),
	})
}
