package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

var autofillMessages = map[editor.AutofillOutcome]string{
	editor.AutofillNothingToFill:   "没有需要填充的班次",
	editor.AutofillFullyFilled:     "已全部填充",
	editor.AutofillPartiallyFilled: "已部分填充",
	editor.AutofillNoCandidates:    "没有可用的候选人",
}

type autofillView struct {
	*editor.AutofillReport
	Outcome editor.AutofillOutcome `json:"outcome"`
}

// Autofill 不传 positionIDs 时填充所有岗位
func (h *Handler) Autofill(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*editor.Session)

	var req struct {
		PositionIDs []int64 `json:"positionIDs" validate:"dive,gt=0"`
	}

	// 请求体可以为空
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	in, err := session.AutofillInput(req.PositionIDs...)
	if err != nil {
		switch {
		case errors.Is(err, editor.ErrUnknownPosition):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	report, err := h.autofiller.Run(r.Context(), in, session.Store)
	if err != nil {
		switch {
		case errors.Is(err, editor.ErrNoSchedule), errors.Is(err, editor.ErrMalformedChange):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	outcome := report.Outcome()
	h.successResponse(w, r, autofillMessages[outcome], autofillView{AutofillReport: report, Outcome: outcome})
}
