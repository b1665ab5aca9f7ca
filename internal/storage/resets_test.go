package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_CreatePasswordReset(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "replaces previous code",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM password_resets WHERE user_id = \$1 OR expires_at < now\(\)`).
					WithArgs(testUserID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO password_resets`).
					WithArgs(testUserID, "code-hash", float64(900)).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "insert failure rolls back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM password_resets`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO password_resets`).WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			tt.setup(mock)

			err := s.CreatePasswordReset(context.Background(), testUserID, "code-hash", 15*time.Minute)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_TakeResetAttempt(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SET attempts = attempts \+ 1`).
		WithArgs(testUserID, 5).
		WillReturnRows(sqlmock.NewRows([]string{"code_hash"}).AddRow("code-hash"))
	mock.ExpectQuery(`SET attempts = attempts \+ 1`).
		WithArgs(testUserID, 5).
		WillReturnError(sql.ErrNoRows)

	got, err := s.TakeResetAttempt(context.Background(), testUserID, 5)
	require.NoError(t, err)
	assert.Equal(t, "code-hash", got)

	_, err = s.TakeResetAttempt(context.Background(), testUserID, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_SetResetToken(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(`SET token_hash = \$1`).
		WithArgs("token-hash", testUserID, "code-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetResetToken(context.Background(), testUserID, "code-hash", "token-hash")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ResetPassword(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "token consumed and password replaced together",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SET used = TRUE`).
					WithArgs("token-hash").
					WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(testUserID))
				mock.ExpectExec(`UPDATE users SET password_hash = \$1, updated_at = now\(\) WHERE id = \$2`).
					WithArgs("$2a$10$new", testUserID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantID: testUserID,
		},
		{
			name: "unknown or used token",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SET used = TRUE`).WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			tt.setup(mock)

			got, err := s.ResetPassword(context.Background(), "token-hash", "$2a$10$new")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
