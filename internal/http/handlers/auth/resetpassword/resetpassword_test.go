package resetpassword

import (
	"bytes"
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

	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/services/passwordreset"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestResetPasswordHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "success",
			body:           `{"resetToken":"tok","newPassword":"secret2","confirmPassword":"secret2"}`,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantMessage:    "password reset",
		},
		{
			name:           "used token",
			body:           `{"resetToken":"tok","newPassword":"secret2","confirmPassword":"secret2"}`,
			mockErr:        passwordreset.ErrInvalidToken,
			callService:    true,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    passwordreset.ErrInvalidToken.Error(),
		},
		{
			name:           "weak password",
			body:           `{"resetToken":"tok","newPassword":"secret2","confirmPassword":"secret2"}`,
			mockErr:        auth.ErrWeakPassword,
			callService:    true,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    auth.ErrWeakPassword.Error(),
		},
		{
			name:           "confirmation mismatch",
			body:           `{"resetToken":"tok","newPassword":"secret2","confirmPassword":"secret3"}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    auth.ErrPasswordMismatch.Error(),
		},
		{
			name:           "missing token",
			body:           `{"newPassword":"secret2","confirmPassword":"secret2"}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "field ResetToken is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			if tt.callService {
				service.On("ResetPassword", mock.Anything, "tok", "secret2").Return(tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(newNoopLogger(), service).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantMessage, got["message"])
			service.AssertExpectations(t)
		})
	}
}
