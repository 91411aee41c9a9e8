package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
)

type AuthService interface {
	CreateTenant(ctx context.Context, name, hubScope string) (*domain.Tenant, error)
	CreateAPIKey(ctx context.Context, tenantID, name string, role domain.Role) (string, error)
	RevokeAPIKey(ctx context.Context, keyID string) error
	ListAPIKeys(ctx context.Context, tenantID string) ([]*domain.APIKey, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type CreateTenantRequest struct {
	Name     string `json:"name"`
	HubScope string `json:"hub_scope"`
}

type TenantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HubScope  string `json:"hub_scope"`
	CreatedAt string `json:"created_at"`
}

type CreateAPIKeyRequest struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type CreateAPIKeyResponse struct {
	Token string `json:"token"`
}

type APIKeyResponse struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	RevokedAt string `json:"revoked_at,omitempty"`
}

func (h *AuthHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := h.svc.CreateTenant(r.Context(), req.Name, req.HubScope)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, TenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		HubScope:  tenant.HubScope,
		CreatedAt: tenant.CreatedAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.CreateAPIKey(r.Context(), req.TenantID, req.Name, domain.Role(req.Role))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, CreateAPIKeyResponse{Token: token})
}

func (h *AuthHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.RevokeAPIKey(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *AuthHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		api.Error(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	keys, err := h.svc.ListAPIKeys(r.Context(), tenantID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*APIKeyResponse, len(keys))
	for i, key := range keys {
		resp := &APIKeyResponse{
			ID:        key.ID,
			TenantID:  key.TenantID,
			Name:      key.Name,
			Role:      string(key.Role),
			CreatedAt: key.CreatedAt.Format(time.RFC3339),
		}
		if key.RevokedAt != nil {
			resp.RevokedAt = key.RevokedAt.Format(time.RFC3339)
		}
		responses[i] = resp
	}
	api.Success(w, http.StatusOK, responses)
}
