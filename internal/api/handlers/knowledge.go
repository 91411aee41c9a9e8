package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api/middleware"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/service"
)

type KnowledgeService interface {
	Create(ctx context.Context, actor domain.Actor, input service.CreateInput) (*domain.KnowledgeItem, error)
	GetByID(ctx context.Context, actor domain.Actor, itemID string) (*domain.KnowledgeItem, error)
	Edit(ctx context.Context, actor domain.Actor, input service.EditInput) (*domain.KnowledgeItem, error)
	Deactivate(ctx context.Context, actor domain.Actor, itemID string) (*domain.KnowledgeItem, error)
	ListDrafts(ctx context.Context, actor domain.Actor) ([]*domain.KnowledgeItem, error)
	List(ctx context.Context, actor domain.Actor, input service.ListInput) (*service.ListOutput, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type CreateKnowledgeRequest struct {
	ID          string   `json:"id,omitempty"`
	Domain      string   `json:"domain"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Section     string   `json:"section,omitempty"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords,omitempty"`
	CrossTags   []string `json:"cross_tags,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Source      string   `json:"source,omitempty"`
}

type EditKnowledgeRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Section     string   `json:"section,omitempty"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords,omitempty"`
	CrossTags   []string `json:"cross_tags,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Source      string   `json:"source,omitempty"`
}

type KnowledgeResponse struct {
	ID                string   `json:"id"`
	TenantID          string   `json:"tenant_id"`
	Domain            string   `json:"domain"`
	Title             string   `json:"title"`
	Content           string   `json:"content"`
	Section           string   `json:"section,omitempty"`
	Category          string   `json:"category"`
	Keywords          []string `json:"keywords,omitempty"`
	CrossTags         []string `json:"cross_tags,omitempty"`
	Connections       []string `json:"connections,omitempty"`
	Source            string   `json:"source,omitempty"`
	Origin            string   `json:"origin"`
	ApprovalStatus    string   `json:"approval_status"`
	PendingApprovalID string   `json:"pending_approval_id,omitempty"`
	RemoteDocID       string   `json:"remote_doc_id,omitempty"`
	Version           int64    `json:"version"`
	IsActive          bool     `json:"is_active"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func knowledgeToResponse(k *domain.KnowledgeItem) *KnowledgeResponse {
	return &KnowledgeResponse{
		ID:                k.ID,
		TenantID:          k.TenantID,
		Domain:            string(k.Domain),
		Title:             k.Title,
		Content:           k.Content,
		Section:           k.Section,
		Category:          k.Category,
		Keywords:          k.Keywords,
		CrossTags:         k.CrossTags,
		Connections:       k.Connections,
		Source:            k.Source,
		Origin:            string(k.Origin),
		ApprovalStatus:    string(k.ApprovalStatus),
		PendingApprovalID: k.PendingApprovalID,
		RemoteDocID:       k.RemoteDocID,
		Version:           k.Version,
		IsActive:          k.IsActive,
		CreatedAt:         k.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         k.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	var req CreateKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if !domain.IsValidDomain(domain.Domain(req.Domain)) {
		api.Error(w, http.StatusBadRequest, "invalid domain")
		return
	}

	item, err := h.svc.Create(r.Context(), actor, service.CreateInput{
		ID:          req.ID,
		Domain:      domain.Domain(req.Domain),
		Title:       req.Title,
		Content:     req.Content,
		Section:     req.Section,
		Category:    req.Category,
		Keywords:    req.Keywords,
		CrossTags:   req.CrossTags,
		Connections: req.Connections,
		Source:      req.Source,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, knowledgeToResponse(item))
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := h.svc.GetByID(r.Context(), actor, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeToResponse(item))
}

func (h *KnowledgeHandler) Edit(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req EditKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	item, err := h.svc.Edit(r.Context(), actor, service.EditInput{
		ItemID:      id,
		Title:       req.Title,
		Content:     req.Content,
		Section:     req.Section,
		Category:    req.Category,
		Keywords:    req.Keywords,
		CrossTags:   req.CrossTags,
		Connections: req.Connections,
		Source:      req.Source,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeToResponse(item))
}

func (h *KnowledgeHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := h.svc.Deactivate(r.Context(), actor, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeToResponse(item))
}

func (h *KnowledgeHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	items, err := h.svc.ListDrafts(r.Context(), actor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*KnowledgeResponse, len(items))
	for i, item := range items {
		responses[i] = knowledgeToResponse(item)
	}
	api.Success(w, http.StatusOK, responses)
}

type KnowledgeListResponse struct {
	Items   []*KnowledgeResponse `json:"items"`
	Cursor  string               `json:"cursor,omitempty"`
	HasMore bool                 `json:"has_more"`
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	cursor := r.URL.Query().Get("cursor")
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.List(r.Context(), actor, service.ListInput{
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*KnowledgeResponse, len(output.Items))
	for i, item := range output.Items {
		responses[i] = knowledgeToResponse(item)
	}

	api.Success(w, http.StatusOK, KnowledgeListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}
