package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api/middleware"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/service"
)

type ApprovalService interface {
	SubmitForApproval(ctx context.Context, actor domain.Actor, itemIDs []string) (*service.SubmitOutput, error)
	Resolve(ctx context.Context, actor domain.Actor, approvalID string, decision service.Decision, notes string) (*domain.ApprovalRecord, error)
	ListPending(ctx context.Context, actor domain.Actor) ([]*domain.ApprovalRecord, error)
}

type ApprovalHandler struct {
	svc ApprovalService
}

func NewApprovalHandler(svc ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{svc: svc}
}

type SubmitRequest struct {
	ItemIDs []string `json:"item_ids"`
}

type SubmitSkipResponse struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

type SubmitResponse struct {
	Submitted []*ApprovalResponse  `json:"submitted"`
	Skipped   []SubmitSkipResponse `json:"skipped,omitempty"`
}

type ResolveRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes,omitempty"`
}

type ApprovalResponse struct {
	ID            string                    `json:"id"`
	TenantID      string                    `json:"tenant_id"`
	LocalRecordID string                    `json:"local_record_id"`
	RemoteDocID   string                    `json:"remote_doc_id,omitempty"`
	ChangeType    string                    `json:"change_type"`
	ProposedData  domain.KnowledgeSnapshot  `json:"proposed_data"`
	OriginalData  *domain.KnowledgeSnapshot `json:"original_data,omitempty"`
	SubmittedBy   string                    `json:"submitted_by"`
	SubmittedAt   string                    `json:"submitted_at"`
	Status        string                    `json:"status"`
	ReviewedBy    string                    `json:"reviewed_by,omitempty"`
	ReviewedAt    string                    `json:"reviewed_at,omitempty"`
	ReviewerNotes string                    `json:"reviewer_notes,omitempty"`
}

func approvalToResponse(rec *domain.ApprovalRecord) *ApprovalResponse {
	resp := &ApprovalResponse{
		ID:            rec.ID,
		TenantID:      rec.TenantID,
		LocalRecordID: rec.LocalRecordID,
		RemoteDocID:   rec.RemoteDocID,
		ChangeType:    string(rec.ChangeType),
		ProposedData:  rec.ProposedData,
		OriginalData:  rec.OriginalData,
		SubmittedBy:   rec.SubmittedBy,
		SubmittedAt:   rec.SubmittedAt.Format(time.RFC3339),
		Status:        string(rec.Status),
		ReviewedBy:    rec.ReviewedBy,
		ReviewerNotes: rec.ReviewerNotes,
	}
	if rec.ReviewedAt != nil {
		resp.ReviewedAt = rec.ReviewedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *ApprovalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ItemIDs) == 0 {
		api.Error(w, http.StatusBadRequest, "item_ids is required")
		return
	}

	out, err := h.svc.SubmitForApproval(r.Context(), actor, req.ItemIDs)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := SubmitResponse{Submitted: make([]*ApprovalResponse, len(out.Submitted))}
	for i, rec := range out.Submitted {
		resp.Submitted[i] = approvalToResponse(rec)
	}
	for _, skip := range out.Skipped {
		resp.Skipped = append(resp.Skipped, SubmitSkipResponse{ItemID: skip.ItemID, Reason: skip.Reason})
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *ApprovalHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision := service.Decision(req.Decision)
	if decision != service.DecisionApprove && decision != service.DecisionReject {
		api.Error(w, http.StatusBadRequest, "decision must be approve or reject")
		return
	}

	rec, err := h.svc.Resolve(r.Context(), actor, id, decision, req.Notes)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, approvalToResponse(rec))
}

func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	records, err := h.svc.ListPending(r.Context(), actor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ApprovalResponse, len(records))
	for i, rec := range records {
		responses[i] = approvalToResponse(rec)
	}
	api.Success(w, http.StatusOK, responses)
}
