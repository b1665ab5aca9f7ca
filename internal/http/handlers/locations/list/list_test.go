package list

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, userID string) ([]*models.Location, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*models.Location)
	return list, args.Error(1)
}

func TestListHandler_ServeHTTP(t *testing.T) {
	service := new(ServiceMock)
	service.On("List", mock.Anything, "u-1").Return([]*models.Location{
		{ID: 1, Label: "home", Address: "Abay 1", Latitude: 43.2, Longitude: 76.9},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &models.Identity{UserID: "u-1"}))
	rec := httptest.NewRecorder()

	New(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})), service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"locations":[{"id":1,"label":"home","address":"Abay 1","latitude":43.2,"longitude":76.9,"createdAt":""}]}`, rec.Body.String())
	service.AssertExpectations(t)
}

func TestListHandler_NoIdentity(t *testing.T) {
	service := new(ServiceMock)
	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	rec := httptest.NewRecorder()

	New(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})), service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	service.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
