package listusers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/admin"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListUsers(ctx context.Context, f models.UserFilter) (*admin.Page, error) {
	args := m.Called(ctx, f)
	page, _ := args.Get(0).(*admin.Page)
	return page, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListUsersHandler_ServeHTTP(t *testing.T) {
	active := true

	tests := []struct {
		name           string
		query          string
		want           *models.UserFilter
		mockErr        error
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "no filters",
			query:          "",
			want:           &models.UserFilter{},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "all filters",
			query: "?search=cafe&role=business&isActive=true&sortBy=name&order=desc&limit=10&offset=20",
			want: &models.UserFilter{
				Search: "cafe", Role: models.RoleBusiness, IsActive: &active,
				SortBy: "name", Desc: true, Limit: 10, Offset: 20,
			},
			wantStatusCode: http.StatusOK,
		},
		{name: "bad role", query: "?role=root", wantStatusCode: http.StatusBadRequest, wantMessage: "invalid role"},
		{name: "bad flag", query: "?isActive=maybe", wantStatusCode: http.StatusBadRequest, wantMessage: "invalid isActive"},
		{name: "bad order", query: "?order=up", wantStatusCode: http.StatusBadRequest, wantMessage: "invalid order"},
		{name: "negative limit", query: "?limit=-1", wantStatusCode: http.StatusBadRequest, wantMessage: "invalid limit"},
		{
			name:           "store failure",
			query:          "",
			want:           &models.UserFilter{},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantMessage:    "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			if tt.want != nil {
				page := &admin.Page{Users: []*models.Account{{ID: "u-1", Role: models.RoleBusiness}}, Total: 1, Limit: 20}
				if tt.mockErr != nil {
					page = nil
				}
				service.On("ListUsers", mock.Anything, *tt.want).Return(page, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/api/admin/users"+tt.query, nil)
			rec := httptest.NewRecorder()
			New(newNoopLogger(), service).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantStatusCode == http.StatusOK {
				assert.Len(t, got["users"], 1)
				assert.Equal(t, map[string]any{"total": float64(1), "limit": float64(20), "offset": float64(0)}, got["pagination"])
			} else {
				assert.Equal(t, tt.wantMessage, got["message"])
			}
			service.AssertExpectations(t)
		})
	}
}
