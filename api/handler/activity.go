package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daylogapp/daylog/domain"
	"github.com/daylogapp/daylog/pkg/httpcontext"
	"github.com/daylogapp/daylog/repository"
)

const defaultLookbackDays = 365

type ActivityHandler struct {
	baseHandler
	activity repository.ActivityRepository
}

func NewActivityHandler(activity repository.ActivityRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		activity:    activity,
	}
}

// @Summary Per-day completion counts for the heatmap
// @Tags activity
// @Router /api/v1/activity [get]
func (h *ActivityHandler) Counts(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	days := defaultLookbackDays
	if raw := string(ctx.QueryArgs().Peek("days")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	points, err := h.activity.CountsByDay(stdCtx, userID, since)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if points == nil {
		points = []domain.ActivityPoint{}
	}
	h.respondSuccess(ctx, http.StatusOK, points)
}
