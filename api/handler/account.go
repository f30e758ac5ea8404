package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daylogapp/daylog/pkg/httpcontext"
	accountUC "github.com/daylogapp/daylog/usecase/account"
)

type AccountHandler struct {
	baseHandler
	uc *accountUC.UseCase
}

func NewAccountHandler(uc *accountUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Delete the authenticated user's account
// @Tags account
// @Router /api/v1/account [delete]
func (h *AccountHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, h.sessionID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
