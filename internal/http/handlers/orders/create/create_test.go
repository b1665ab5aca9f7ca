package create

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
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
	"github.com/magabrotheeeer/foodshare/internal/services/orders"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userID string, in orders.OrderInput) (*models.Order, error) {
	args := m.Called(ctx, userID, in)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	body := `{"restaurantName":"Navat","items":[{"name":"plov","quantity":2,"price":1500}],"deliveryAddress":"Abay 1"}`
	input := orders.OrderInput{
		RestaurantName:  "Navat",
		Items:           []models.OrderItem{{Name: "plov", Quantity: 2, Price: 1500}},
		DeliveryAddress: "Abay 1",
	}

	tests := []struct {
		name           string
		body           string
		mockOrder      *models.Order
		mockErr        error
		callService    bool
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "created",
			body:           body,
			mockOrder:      &models.Order{ID: 11, RestaurantName: "Navat", Items: input.Items, Total: 3000, Status: models.OrderStatusCreated},
			callService:    true,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing items",
			body:           `{"restaurantName":"Navat","deliveryAddress":"Abay 1"}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "field Items is a required field",
		},
		{
			name:           "rejected by service",
			body:           body,
			mockErr:        fmt.Errorf("%w: item 0 quantity must be positive", orders.ErrInvalidOrder),
			callService:    true,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "invalid order: item 0 quantity must be positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			if tt.callService {
				service.On("Create", mock.Anything, "u-1", input).Return(tt.mockOrder, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &models.Identity{UserID: "u-1"}))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), service).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got["message"])
			} else {
				order := got["order"].(map[string]any)
				assert.Equal(t, float64(3000), order["total"])
				assert.Equal(t, "CREATED", order["status"])
			}
			service.AssertExpectations(t)
		})
	}
}
