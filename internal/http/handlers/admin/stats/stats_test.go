package stats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/admin"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Stats(ctx context.Context) (*admin.Stats, error) {
	args := m.Called(ctx)
	st, _ := args.Get(0).(*admin.Stats)
	return st, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestStatsHandler_ServeHTTP(t *testing.T) {
	service := new(ServiceMock)
	service.On("Stats", mock.Anything).Return(&admin.Stats{
		Total:  4,
		Active: 3,
		Roles: []models.RoleStat{
			{Role: models.RoleAdmin, Total: 1, Active: 1},
			{Role: models.RoleUser, Total: 3, Active: 2},
		},
	}, nil).Once()

	rec := httptest.NewRecorder()
	New(newNoopLogger(), service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats/system", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"totalUsers": 4,
		"activeUsers": 3,
		"roles": [
			{"role": "ADMIN", "total": 1, "active": 1},
			{"role": "USER", "total": 3, "active": 2}
		]
	}`, rec.Body.String())
}

func TestStatsHandler_StoreError(t *testing.T) {
	service := new(ServiceMock)
	service.On("Stats", mock.Anything).Return(nil, errors.New("db down")).Once()

	rec := httptest.NewRecorder()
	New(newNoopLogger(), service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats/system", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
