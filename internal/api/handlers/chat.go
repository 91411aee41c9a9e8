package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
)

// maxGroundedResults caps how many knowledge items feed one answer.
const maxGroundedResults = 3

type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

// ChatHandler answers a message from the knowledge stores when they hold
// relevant content, and falls back to the language model when they do not.
type ChatHandler struct {
	router    Router
	completer Completer
}

func NewChatHandler(r Router, completer Completer) *ChatHandler {
	return &ChatHandler{router: r, completer: completer}
}

type ChatRequest struct {
	Message string   `json:"message"`
	Themes  []string `json:"themes,omitempty"`
}

type ChatResponse struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Grounded bool     `json:"grounded"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	output := h.router.Search(r.Context(), req.Message, req.Themes)

	if output.ShouldFallback {
		answer, err := h.completer.Complete(r.Context(), req.Message)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		api.Success(w, http.StatusOK, ChatResponse{
			Answer:   answer,
			Sources:  []string{},
			Grounded: false,
		})
		return
	}

	results := output.Results
	if len(results) > maxGroundedResults {
		results = results[:maxGroundedResults]
	}

	var b strings.Builder
	sources := make([]string, 0, len(results))
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(res.Item.Title)
		b.WriteString("\n")
		b.WriteString(res.Item.Content)
		sources = append(sources, res.Item.ID)
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Answer:   b.String(),
		Sources:  sources,
		Grounded: true,
	})
}
