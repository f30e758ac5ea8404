package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daylogapp/daylog/api/transport"
	"github.com/daylogapp/daylog/domain"
	"github.com/daylogapp/daylog/pkg/httpcontext"
	todoUC "github.com/daylogapp/daylog/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List todos
// @Tags todos
// @Router /api/v1/todos [get]
func (h *TodoHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.uc.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	h.respondSuccess(ctx, http.StatusOK, todos)
}

// @Summary Create todo
// @Tags todos
// @Router /api/v1/todos [post]
func (h *TodoHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TodoCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, userID, req.Title, req.Priority)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Patch todo
// @Tags todos
// @Router /api/v1/todos/{id} [patch]
func (h *TodoHandler) Patch(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id", nil))
		return
	}

	patch, ok := h.parsePatch(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Patch(stdCtx, id, userID, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete todo
// @Tags todos
// @Router /api/v1/todos/{id} [delete]
func (h *TodoHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id, userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// parsePatch distinguishes absent fields from explicit nulls, which the
// partial-update contract requires (clearing a url sends "url": null).
func (h *TodoHandler) parsePatch(ctx *fasthttp.RequestCtx) (domain.TodoPatch, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(ctx.PostBody(), &fields); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return domain.TodoPatch{}, false
	}

	var patch domain.TodoPatch

	if raw, ok := fields["is_completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid is_completed", nil))
			return domain.TodoPatch{}, false
		}
		patch.IsCompleted = &completed
	}
	if raw, ok := fields["completed_at"]; ok && string(raw) != "null" {
		var at time.Time
		if err := json.Unmarshal(raw, &at); err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid completed_at", nil))
			return domain.TodoPatch{}, false
		}
		patch.CompletedAt = &at
	}
	if raw, ok := fields["output"]; ok {
		patch.SetOutput = true
		if string(raw) != "null" {
			var output string
			if err := json.Unmarshal(raw, &output); err != nil {
				h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid output", nil))
				return domain.TodoPatch{}, false
			}
			patch.Output = &output
		}
	}
	if raw, ok := fields["url"]; ok {
		patch.SetURL = true
		if string(raw) != "null" {
			var rawURL string
			if err := json.Unmarshal(raw, &rawURL); err != nil {
				h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid url", nil))
				return domain.TodoPatch{}, false
			}
			patch.URL = &rawURL
		}
	}

	return patch, true
}
