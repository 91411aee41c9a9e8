package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Pull(ctx context.Context, actor domain.Actor) (*service.PullResult, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PullResult), args.Error(1)
}

func (m *MockSyncService) Push(ctx context.Context, actor domain.Actor, force bool) (*service.PushResult, error) {
	args := m.Called(ctx, actor, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PushResult), args.Error(1)
}

type fakeReloader struct {
	calls int
	err   error
}

func (f *fakeReloader) Reload(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestSyncHandler_Pull(t *testing.T) {
	t.Run("pull reloads the stores", func(t *testing.T) {
		mockSvc := new(MockSyncService)
		reloader := &fakeReloader{}
		handler := NewSyncHandler(mockSvc, reloader)

		mockSvc.On("Pull", mock.Anything, testActor).
			Return(&service.PullResult{Created: 2, Updated: 1, Skipped: 3}, nil)

		req := requestWithActor(http.MethodPost, "/sync/pull", nil)
		w := httptest.NewRecorder()

		handler.Pull(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, reloader.calls)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, float64(2), data["created"])
		assert.Equal(t, float64(1), data["updated"])
		assert.Equal(t, float64(3), data["skipped"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("hub failure skips the reload", func(t *testing.T) {
		mockSvc := new(MockSyncService)
		reloader := &fakeReloader{}
		handler := NewSyncHandler(mockSvc, reloader)

		mockSvc.On("Pull", mock.Anything, testActor).Return(nil, domain.ErrHubUnavailable)

		req := requestWithActor(http.MethodPost, "/sync/pull", nil)
		w := httptest.NewRecorder()

		handler.Pull(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, 0, reloader.calls)
	})

	t.Run("reviewer role required", func(t *testing.T) {
		mockSvc := new(MockSyncService)
		handler := NewSyncHandler(mockSvc, &fakeReloader{})

		mockSvc.On("Pull", mock.Anything, testActor).Return(nil, domain.ErrReviewerRoleRequired)

		req := requestWithActor(http.MethodPost, "/sync/pull", nil)
		w := httptest.NewRecorder()

		handler.Pull(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSyncHandler_Push(t *testing.T) {
	t.Run("push with force", func(t *testing.T) {
		mockSvc := new(MockSyncService)
		handler := NewSyncHandler(mockSvc, &fakeReloader{})

		mockSvc.On("Push", mock.Anything, testActor, true).
			Return(&service.PushResult{Created: 1, Updated: 2}, nil)

		req := requestWithActor(http.MethodPost, "/sync/push", []byte(`{"force":true}`))
		w := httptest.NewRecorder()

		handler.Push(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty body defaults force to false", func(t *testing.T) {
		mockSvc := new(MockSyncService)
		handler := NewSyncHandler(mockSvc, &fakeReloader{})

		mockSvc.On("Push", mock.Anything, testActor, false).
			Return(&service.PushResult{Skipped: 4}, nil)

		req := requestWithActor(http.MethodPost, "/sync/push", nil)
		w := httptest.NewRecorder()

		handler.Push(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("per-item errors are reported", func(t *testing.T) {
		mockSvc := new(MockSyncService)
		handler := NewSyncHandler(mockSvc, &fakeReloader{})

		mockSvc.On("Push", mock.Anything, testActor, false).
			Return(&service.PushResult{Errors: []string{"btc-halving: hub rejected the slug"}}, nil)

		req := requestWithActor(http.MethodPost, "/sync/push", []byte(`{}`))
		w := httptest.NewRecorder()

		handler.Push(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		errs := data["errors"].([]interface{})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "btc-halving")
	})
}
