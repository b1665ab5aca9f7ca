package passwordreset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/foodshare/internal/lib/password"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

const userID = "7f1c2a9e-4b1d-4c55-9a0e-2f3b4c5d6e7f"

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// zeroRandom даёт код 000000 и токен из нулевых байтов.
func zeroRandom() io.Reader {
	return bytes.NewReader(make([]byte, 256))
}

// MockStore мок хранилища кодов восстановления.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) CreatePasswordReset(ctx context.Context, userID, codeHash string, ttl time.Duration) error {
	args := m.Called(ctx, userID, codeHash, ttl)
	return args.Error(0)
}

func (m *MockStore) TakeResetAttempt(ctx context.Context, userID string, maxAttempts int) (string, error) {
	args := m.Called(ctx, userID, maxAttempts)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SetResetToken(ctx context.Context, userID, codeHash, tokenHash string) error {
	args := m.Called(ctx, userID, codeHash, tokenHash)
	return args.Error(0)
}

func (m *MockStore) ResetPassword(ctx context.Context, tokenHash, passwordHash string) (string, error) {
	args := m.Called(ctx, tokenHash, passwordHash)
	return args.String(0), args.Error(1)
}

// MockPublisher мок публикации событий.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PasswordResetRequested(ctx context.Context, account *models.Account, code string, expiresAt time.Time) error {
	args := m.Called(ctx, account, code, expiresAt)
	return args.Error(0)
}

func activeAccount() *models.Account {
	return &models.Account{ID: userID, Email: "user@example.com", Name: "User", IsActive: true}
}

func TestService_RequestCode(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		email     string
		noBroker  bool
		setup     func(*MockStore, *MockPublisher)
		wantErr   error
		wantPlain bool
	}{
		{
			name:  "issues code for active account",
			email: "  User@Example.com ",
			setup: func(st *MockStore, pub *MockPublisher) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeAccount(), nil).Once()
				st.On("CreatePasswordReset", mock.Anything, userID, hashCode(userID, "000000"), CodeTTL).Return(nil).Once()
				pub.On("PasswordResetRequested", mock.Anything, mock.AnythingOfType("*models.Account"), "000000", now.Add(CodeTTL)).
					Return(nil).Once()
			},
		},
		{
			name:  "unknown email is silent",
			email: "ghost@example.com",
			setup: func(st *MockStore, _ *MockPublisher) {
				st.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, storage.ErrNotFound).Once()
			},
		},
		{
			name:  "inactive account is silent",
			email: "user@example.com",
			setup: func(st *MockStore, _ *MockPublisher) {
				acc := activeAccount()
				acc.IsActive = false
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(acc, nil).Once()
			},
		},
		{
			name:    "empty email",
			email:   "   ",
			setup:   func(*MockStore, *MockPublisher) {},
			wantErr: auth.ErrValidation,
		},
		{
			name:     "no broker configured",
			email:    "user@example.com",
			noBroker: true,
			setup:    func(*MockStore, *MockPublisher) {},
			wantErr:  ErrUnavailable,
		},
		{
			name:  "store failure",
			email: "user@example.com",
			setup: func(st *MockStore, _ *MockPublisher) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeAccount(), nil).Once()
				st.On("CreatePasswordReset", mock.Anything, userID, mock.Anything, CodeTTL).Return(errors.New("db down")).Once()
			},
			wantPlain: true,
		},
		{
			name:  "publish failure",
			email: "user@example.com",
			setup: func(st *MockStore, pub *MockPublisher) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeAccount(), nil).Once()
				st.On("CreatePasswordReset", mock.Anything, userID, mock.Anything, CodeTTL).Return(nil).Once()
				pub.On("PasswordResetRequested", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(errors.New("channel closed")).Once()
			},
			wantPlain: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(MockStore)
			pub := new(MockPublisher)
			tt.setup(st, pub)

			var publisher Publisher = pub
			if tt.noBroker {
				publisher = nil
			}
			s := NewService(st, password.NewHasher(bcrypt.MinCost), publisher, newNoopLogger(), WithRandom(zeroRandom()))
			s.now = func() time.Time { return now }

			err := s.RequestCode(context.Background(), tt.email)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantPlain:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			st.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_VerifyCode(t *testing.T) {
	stored := hashCode(userID, "000000")
	token := strings.Repeat("00", tokenBytes)

	tests := []struct {
		name      string
		code      string
		setup     func(*MockStore)
		wantToken string
		wantErr   error
	}{
		{
			name: "valid code yields token",
			code: "000000",
			setup: func(st *MockStore) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeAccount(), nil).Once()
				st.On("TakeResetAttempt", mock.Anything, userID, MaxAttempts).Return(stored, nil).Once()
				st.On("SetResetToken", mock.Anything, userID, stored, hashToken(token)).Return(nil).Once()
			},
			wantToken: token,
		},
		{
			name: "wrong code",
			code: "123456",
			setup: func(st *MockStore) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeAccount(), nil).Once()
				st.On("TakeResetAttempt", mock.Anything, userID, MaxAttempts).Return(stored, nil).Once()
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "attempts exhausted or code expired",
			code: "000000",
			setup: func(st *MockStore) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeAccount(), nil).Once()
				st.On("TakeResetAttempt", mock.Anything, userID, MaxAttempts).Return("", storage.ErrNotFound).Once()
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "unknown email",
			code: "000000",
			setup: func(st *MockStore) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrInvalidCode,
		},
		{
			name:    "malformed code skips store",
			code:    "12ab56",
			setup:   func(*MockStore) {},
			wantErr: ErrInvalidCode,
		},
		{
			name: "code superseded before token bound",
			code: "000000",
			setup: func(st *MockStore) {
				st.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeAccount(), nil).Once()
				st.On("TakeResetAttempt", mock.Anything, userID, MaxAttempts).Return(stored, nil).Once()
				st.On("SetResetToken", mock.Anything, userID, stored, mock.Anything).Return(storage.ErrNotFound).Once()
			},
			wantErr: ErrInvalidCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(MockStore)
			tt.setup(st)
			s := NewService(st, password.NewHasher(bcrypt.MinCost), new(MockPublisher), newNoopLogger(), WithRandom(zeroRandom()))

			got, err := s.VerifyCode(context.Background(), "user@example.com", tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, got)
			}
			st.AssertExpectations(t)
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	const token = "reset-token"

	tests := []struct {
		name        string
		token       string
		newPassword string
		setup       func(*MockStore)
		wantErr     error
	}{
		{
			name:        "sets new password",
			token:       token,
			newPassword: "brand-new-pass",
			setup: func(st *MockStore) {
				st.On("ResetPassword", mock.Anything, hashToken(token), mock.MatchedBy(func(h string) bool {
					return bcrypt.CompareHashAndPassword([]byte(h), []byte("brand-new-pass")) == nil
				})).Return(userID, nil).Once()
			},
		},
		{
			name:        "unknown or used token",
			token:       token,
			newPassword: "brand-new-pass",
			setup: func(st *MockStore) {
				st.On("ResetPassword", mock.Anything, hashToken(token), mock.Anything).Return("", storage.ErrNotFound).Once()
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:        "weak password skips store",
			token:       token,
			newPassword: "123",
			setup:       func(*MockStore) {},
			wantErr:     auth.ErrWeakPassword,
		},
		{
			name:        "empty token",
			newPassword: "brand-new-pass",
			setup:       func(*MockStore) {},
			wantErr:     ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(MockStore)
			tt.setup(st)
			s := NewService(st, password.NewHasher(bcrypt.MinCost), new(MockPublisher), newNoopLogger())

			err := s.ResetPassword(context.Background(), tt.token, tt.newPassword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			st.AssertExpectations(t)
		})
	}
}

// memoryStore повторяет условия таблицы password_resets в памяти.
type memoryStore struct {
	mu       sync.Mutex
	account  *models.Account
	codeHash string
	token    string
	attempts int
	used     bool
	expires  time.Time
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (*models.Account, error) {
	if email != m.account.Email {
		return nil, storage.ErrNotFound
	}
	cp := *m.account
	return &cp, nil
}

func (m *memoryStore) CreatePasswordReset(_ context.Context, _, codeHash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeHash, m.token, m.attempts, m.used = codeHash, "", 0, false
	m.expires = time.Now().Add(ttl)
	return nil
}

func (m *memoryStore) live() bool {
	return m.codeHash != "" && !m.used && time.Now().Before(m.expires)
}

func (m *memoryStore) TakeResetAttempt(_ context.Context, _ string, maxAttempts int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live() || m.attempts >= maxAttempts {
		return "", storage.ErrNotFound
	}
	m.attempts++
	return m.codeHash, nil
}

func (m *memoryStore) SetResetToken(_ context.Context, _, codeHash, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live() || codeHash != m.codeHash {
		return storage.ErrNotFound
	}
	m.token = tokenHash
	return nil
}

func (m *memoryStore) ResetPassword(_ context.Context, tokenHash, passwordHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live() || m.token == "" || tokenHash != m.token {
		return "", storage.ErrNotFound
	}
	m.used = true
	m.account.PasswordHash = passwordHash
	return m.account.ID, nil
}

func TestService_FullFlow(t *testing.T) {
	st := &memoryStore{account: activeAccount()}
	pub := new(MockPublisher)
	var code string
	pub.On("PasswordResetRequested", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { code = args.String(2) }).
		Return(nil)

	hasher := password.NewHasher(bcrypt.MinCost)
	s := NewService(st, hasher, pub, newNoopLogger())
	ctx := context.Background()

	require.NoError(t, s.RequestCode(ctx, "user@example.com"))
	require.Len(t, code, CodeLength)

	token, err := s.VerifyCode(ctx, "user@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, s.ResetPassword(ctx, token, "brand-new-pass"))
	assert.True(t, hasher.Verify("brand-new-pass", st.account.PasswordHash))

	// токен одноразовый
	assert.ErrorIs(t, s.ResetPassword(ctx, token, "another-pass"), ErrInvalidToken)
	// погашенный код больше не принимается
	_, err = s.VerifyCode(ctx, "user@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestService_AttemptsLimit(t *testing.T) {
	st := &memoryStore{account: activeAccount()}
	pub := new(MockPublisher)
	var code string
	pub.On("PasswordResetRequested", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { code = args.String(2) }).
		Return(nil)

	s := NewService(st, password.NewHasher(bcrypt.MinCost), pub, newNoopLogger())
	ctx := context.Background()
	require.NoError(t, s.RequestCode(ctx, "user@example.com"))

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := range MaxAttempts {
		_, err := s.VerifyCode(ctx, "user@example.com", wrong)
		require.ErrorIs(t, err, ErrInvalidCode, fmt.Sprintf("attempt %d", i+1))
	}

	// после исчерпания попыток не проходит и верный код
	_, err := s.VerifyCode(ctx, "user@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)

	// новый запрос выдаёт свежий код с полным набором попыток
	require.NoError(t, s.RequestCode(ctx, "user@example.com"))
	_, err = s.VerifyCode(ctx, "user@example.com", code)
	assert.NoError(t, err)
}
