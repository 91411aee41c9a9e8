package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api/middleware"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/service"
)

type SyncService interface {
	Pull(ctx context.Context, actor domain.Actor) (*service.PullResult, error)
	Push(ctx context.Context, actor domain.Actor, force bool) (*service.PushResult, error)
}

// Reloader refreshes the in-memory domain stores from persistence.
type Reloader interface {
	Reload(ctx context.Context) error
}

type SyncHandler struct {
	svc      SyncService
	reloader Reloader
}

func NewSyncHandler(svc SyncService, reloader Reloader) *SyncHandler {
	return &SyncHandler{svc: svc, reloader: reloader}
}

type PullResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type PushRequest struct {
	Force bool `json:"force,omitempty"`
}

type PushResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	result, err := h.svc.Pull(r.Context(), actor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	// Make pulled content searchable immediately instead of waiting for the
	// change notification.
	if err := h.reloader.Reload(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PullResponse{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
	})
}

func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	var req PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Push(r.Context(), actor, req.Force)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PushResponse{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
		Errors:  result.Errors,
	})
}
