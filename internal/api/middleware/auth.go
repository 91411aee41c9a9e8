package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
)

type contextKey string

const ActorKey contextKey = "actor"

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (*domain.Actor, error)
}

func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			actor, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, *actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor returns the authenticated actor from context. The zero Actor is
// returned when auth has not run; its empty role fails every capability
// check.
func GetActor(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(ActorKey).(domain.Actor)
	return actor
}

// GetTenantID returns the authenticated actor's tenant, if any.
func GetTenantID(ctx context.Context) string {
	return GetActor(ctx).TenantID
}
