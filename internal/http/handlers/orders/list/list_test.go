package list

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	list, _ := args.Get(0).([]*models.Order)
	return list, args.Error(1)
}

func TestListHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 0, wantOffset: 0},
		{name: "explicit", query: "?limit=5&offset=10", wantLimit: 5, wantOffset: 10},
		{name: "garbage", query: "?limit=x&offset=-3", wantLimit: 0, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			service.On("List", mock.Anything, "u-1", tt.wantLimit, tt.wantOffset).Return([]*models.Order{
				{ID: 1, RestaurantName: "Navat", Items: []models.OrderItem{{Name: "plov", Quantity: 1, Price: 1500}}, Total: 1500, Status: models.OrderStatusCreated},
			}, nil).Once()

			req := httptest.NewRequest(http.MethodGet, "/api/orders"+tt.query, nil)
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &models.Identity{UserID: "u-1"}))
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})), service).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var got struct {
				Success bool `json:"success"`
				Orders  []struct {
					Total  float64 `json:"total"`
					Status string  `json:"status"`
				} `json:"orders"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.True(t, got.Success)
			require.Len(t, got.Orders, 1)
			assert.Equal(t, "CREATED", got.Orders[0].Status)
			service.AssertExpectations(t)
		})
	}
}
