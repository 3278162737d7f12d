package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/event"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOutboxHandler(t *testing.T) {
	svc := new(MockOutboxService)
	h := NewOutboxHandler(svc)
	r := newRouter(admin)
	r.GET("/admin/outbox/stats", h.GetStats)
	r.GET("/admin/outbox/dead", h.GetDeadLetterEntries)
	r.POST("/admin/outbox/dead/retry-all", h.RetryAllDeadEntries)
	r.GET("/admin/outbox/:id", h.GetEntry)
	r.POST("/admin/outbox/:id/retry", h.RetryDeadEntry)

	entryID := uuid.New()

	t.Run("stats", func(t *testing.T) {
		svc.On("GetStats", mock.Anything).Return(&event.OutboxStatsDTO{Pending: 2, Dead: 1, Total: 3}, nil).Once()

		rec := perform(r, http.MethodGet, "/admin/outbox/stats", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"dead":1`)
	})

	t.Run("dead letters paginated", func(t *testing.T) {
		svc.On("GetDeadLetterEntries", mock.Anything, event.OutboxFilter{Page: 1, PageSize: 5}).
			Return(&shared.Paginated[event.OutboxEntryDTO]{
				Items: []event.OutboxEntryDTO{{ID: entryID, EventType: "OrderPlaced", Status: "DEAD"}},
				Total: 1, Page: 1, PageSize: 5, TotalPages: 1,
			}, nil).Once()

		rec := perform(r, http.MethodGet, "/admin/outbox/dead?page=1&page_size=5", "")
		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
	})

	t.Run("page size capped", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/admin/outbox/dead?page_size=500", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode(t, rec).Error.Code)
	})

	t.Run("invalid entry id", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/admin/outbox/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decode(t, rec).Error.Code)
	})

	t.Run("entry not found", func(t *testing.T) {
		svc.On("GetEntry", mock.Anything, entryID).Return(nil, shared.ErrNotFound).Once()

		rec := perform(r, http.MethodGet, "/admin/outbox/"+entryID.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("retry one", func(t *testing.T) {
		svc.On("RetryDeadEntry", mock.Anything, entryID).
			Return(&event.OutboxEntryDTO{ID: entryID, Status: "PENDING"}, nil).Once()

		rec := perform(r, http.MethodPost, "/admin/outbox/"+entryID.String()+"/retry", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"PENDING"`)
	})

	t.Run("retry all", func(t *testing.T) {
		svc.On("RetryAllDeadEntries", mock.Anything).Return(int64(4), nil).Once()

		rec := perform(r, http.MethodPost, "/admin/outbox/dead/retry-all", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":4}`, string(decode(t, rec).Data))
	})

	svc.AssertExpectations(t)
}
