package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/router"
)

type Router interface {
	Search(ctx context.Context, message string, themes []string) *router.SearchOutput
}

type SearchHandler struct {
	router Router
}

func NewSearchHandler(r Router) *SearchHandler {
	return &SearchHandler{router: r}
}

type SearchRequest struct {
	Message string   `json:"message"`
	Themes  []string `json:"themes,omitempty"`
}

type SearchResultResponse struct {
	Item      *KnowledgeResponse `json:"item"`
	Source    string             `json:"source"`
	Relevance int                `json:"relevance"`
}

type SearchResponse struct {
	Results        []*SearchResultResponse `json:"results"`
	Sources        []string                `json:"sources"`
	TotalItems     int                     `json:"total_items"`
	ShouldFallback bool                    `json:"should_fallback"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	output := h.router.Search(r.Context(), req.Message, req.Themes)

	resp := SearchResponse{
		Results:        make([]*SearchResultResponse, len(output.Results)),
		Sources:        make([]string, len(output.Sources)),
		TotalItems:     output.TotalItems,
		ShouldFallback: output.ShouldFallback,
	}
	for i, res := range output.Results {
		resp.Results[i] = &SearchResultResponse{
			Item:      knowledgeToResponse(res.Item),
			Source:    string(res.Source),
			Relevance: res.Relevance,
		}
	}
	for i, src := range output.Sources {
		resp.Sources[i] = string(src)
	}

	api.Success(w, http.StatusOK, resp)
}
