package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsert(t *testing.T) {
	t.Run("sends the document with the service token", func(t *testing.T) {
		var gotAuth string
		var gotDoc Doc
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/v1/docs", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
			json.NewEncoder(w).Encode(UpsertResult{ID: "doc-1", Version: 2})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "svc-token")
		result, err := client.Upsert(context.Background(), Doc{
			Slug:        "btc-halving",
			TenantScope: "scope-1",
			Domain:      domain.DomainCrypto,
			Data:        domain.KnowledgeSnapshot{ID: "btc-halving", Title: "The Halving", Content: "...", Category: "economics"},
			IsActive:    true,
		})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", result.ID)
		assert.Equal(t, int64(2), result.Version)
		assert.Equal(t, "Bearer svc-token", gotAuth)
		assert.Equal(t, "btc-halving", gotDoc.Slug)
		assert.Equal(t, "scope-1", gotDoc.TenantScope)
	})

	t.Run("401 maps to unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "bad-token")
		_, err := client.Upsert(context.Background(), Doc{Slug: "x"})

		assert.ErrorIs(t, err, domain.ErrHubUnauthorized)
	})

	t.Run("409 maps to slug conflict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "svc-token")
		_, err := client.Upsert(context.Background(), Doc{Slug: "x"})

		assert.ErrorIs(t, err, domain.ErrHubSlugConflict)
	})

	t.Run("5xx surfaces the hub error message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "replica lag"})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "svc-token")
		_, err := client.Upsert(context.Background(), Doc{Slug: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "replica lag")
	})
}

func TestFetchActive(t *testing.T) {
	t.Run("queries the tenant scope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "true", r.URL.Query().Get("active"))
			assert.Equal(t, "scope one", r.URL.Query().Get("tenant_scope"))
			json.NewEncoder(w).Encode([]Doc{
				{ID: "doc-1", Slug: "btc-halving", Version: 3, IsActive: true},
				{ID: "doc-2", Slug: "reit-ffo", Version: 1, IsActive: true},
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "svc-token")
		docs, err := client.FetchActive(context.Background(), "scope one")

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "doc-1", docs[0].ID)
		assert.Equal(t, int64(3), docs[0].Version)
	})

	t.Run("connection failure maps to a remote sync error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "svc-token")

		_, err := client.FetchActive(context.Background(), "scope-1")

		require.Error(t, err)
		var derr *domain.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.ErrCodeRemoteSync, derr.Code)
	})
}
