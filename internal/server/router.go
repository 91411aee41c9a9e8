package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api/handlers"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator    middleware.AuthValidator
	KnowledgeHandler *handlers.KnowledgeHandler
	SearchHandler    *handlers.SearchHandler
	ChatHandler      *handlers.ChatHandler
	ApprovalHandler  *handlers.ApprovalHandler
	SyncHandler      *handlers.SyncHandler
	AuthHandler      *handlers.AuthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Post("/search", cfg.SearchHandler.Search)
		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/", cfg.KnowledgeHandler.Create)
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Get("/drafts", cfg.KnowledgeHandler.ListDrafts)
			r.Get("/{id}", cfg.KnowledgeHandler.Get)
			r.Put("/{id}", cfg.KnowledgeHandler.Edit)
			r.Delete("/{id}", cfg.KnowledgeHandler.Deactivate)
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Get("/", cfg.ApprovalHandler.ListPending)
			r.Post("/submit", cfg.ApprovalHandler.Submit)
			r.Post("/{id}/resolve", cfg.ApprovalHandler.Resolve)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/pull", cfg.SyncHandler.Pull)
			r.Post("/push", cfg.SyncHandler.Push)
		})
	})

	r.Post("/tenants", cfg.AuthHandler.CreateTenant)
	r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)
	r.Get("/apikeys", cfg.AuthHandler.ListAPIKeys)
	r.Delete("/apikeys/{id}", cfg.AuthHandler.RevokeAPIKey)

	return r
}
