package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

func strPtr(s string) *string {
	return &s
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		input      RegisterInput
		setupMock  func(m *MockUserStore)
		wantErr    error
		wantName   string
		wantInsert bool
	}{
		{
			name:  "success with defaults",
			input: RegisterInput{Email: "  Alice@X.com ", Password: "secret1"},
			setupMock: func(m *MockUserStore) {
				m.On("UserExists", mock.Anything, "alice@x.com").Return(false, nil).Once()
				m.On("RegisterUser", mock.Anything, mock.MatchedBy(func(a models.Account) bool {
					return a.Email == "alice@x.com" &&
						a.Name == "alice" &&
						a.Role == models.RoleUser &&
						a.Balance == models.DefaultBalance &&
						a.City == models.DefaultCity &&
						a.Phone == models.DefaultPhone &&
						a.IsActive &&
						a.PasswordHash != "secret1"
				})).Return(&models.Account{ID: "u-1", Email: "alice@x.com", Name: "alice", Role: models.RoleUser, IsActive: true}, nil).Once()
			},
			wantName:   "alice",
			wantInsert: true,
		},
		{
			name:  "password of six characters is accepted",
			input: RegisterInput{Name: "Alice", Email: "alice@x.com", Password: "123456", ConfirmPassword: strPtr("123456")},
			setupMock: func(m *MockUserStore) {
				m.On("UserExists", mock.Anything, "alice@x.com").Return(false, nil).Once()
				m.On("RegisterUser", mock.Anything, mock.Anything).
					Return(&models.Account{ID: "u-1", Email: "alice@x.com", Name: "Alice", Role: models.RoleUser, IsActive: true}, nil).Once()
			},
			wantName:   "Alice",
			wantInsert: true,
		},
		{
			name:    "password of five characters is weak",
			input:   RegisterInput{Email: "alice@x.com", Password: "12345"},
			wantErr: ErrWeakPassword,
		},
		{
			name:    "password length counts characters not bytes",
			input:   RegisterInput{Email: "alice@x.com", Password: "пароль"[:8]},
			wantErr: ErrWeakPassword,
		},
		{
			name:    "confirmation mismatch",
			input:   RegisterInput{Email: "alice@x.com", Password: "secret1", ConfirmPassword: strPtr("secret2")},
			wantErr: ErrPasswordMismatch,
		},
		{
			name:    "empty email",
			input:   RegisterInput{Password: "secret1"},
			wantErr: ErrValidation,
		},
		{
			name:    "malformed email",
			input:   RegisterInput{Email: "alice.x.com", Password: "secret1"},
			wantErr: ErrValidation,
		},
		{
			name:    "empty password",
			input:   RegisterInput{Email: "alice@x.com"},
			wantErr: ErrValidation,
		},
		{
			name: "email already registered, no insert",
			input: RegisterInput{Email: "alice@x.com", Password: "secret1"},
			setupMock: func(m *MockUserStore) {
				m.On("UserExists", mock.Anything, "alice@x.com").Return(true, nil).Once()
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name:  "unique violation on insert",
			input: RegisterInput{Email: "alice@x.com", Password: "secret1"},
			setupMock: func(m *MockUserStore) {
				m.On("UserExists", mock.Anything, "alice@x.com").Return(false, nil).Once()
				m.On("RegisterUser", mock.Anything, mock.Anything).
					Return(nil, errors.Join(errors.New("storage.RegisterUser"), storage.ErrEmailTaken)).Once()
			},
			wantErr:    ErrDuplicateEmail,
			wantInsert: true,
		},
		{
			name:  "store failure",
			input: RegisterInput{Email: "alice@x.com", Password: "secret1"},
			setupMock: func(m *MockUserStore) {
				m.On("UserExists", mock.Anything, "alice@x.com").Return(false, errors.New("connection refused")).Once()
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockUserStore)
			if tt.setupMock != nil {
				tt.setupMock(store)
			}
			svc := NewService(store, newTestHasher(), newTestMaker(), newNoopLogger())

			session, err := svc.Register(context.Background(), tt.input)

			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
				require.NotNil(t, session)
				assert.NotEmpty(t, session.Token)
				assert.Equal(t, tt.wantName, session.Account.Name)
			case tt.wantErr.Error() == "connection refused":
				require.Error(t, err)
				assert.Contains(t, err.Error(), "auth.Register")
			default:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
			}
			if !tt.wantInsert {
				store.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestService_Register_PublishesEvent(t *testing.T) {
	store := new(MockUserStore)
	publisher := new(MockPublisher)
	observer := &recordingObserver{}
	created := &models.Account{ID: "u-1", Email: "alice@x.com", Role: models.RoleUser, IsActive: true}

	store.On("UserExists", mock.Anything, "alice@x.com").Return(false, nil).Once()
	store.On("RegisterUser", mock.Anything, mock.Anything).Return(created, nil).Once()
	publisher.On("AccountRegistered", mock.Anything, created).Return(errors.New("broker down")).Once()

	svc := NewService(store, newTestHasher(), newTestMaker(), newNoopLogger(),
		WithPublisher(publisher), WithObserver(observer))

	session, err := svc.Register(context.Background(), RegisterInput{Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err, "publishing failure must not fail registration")
	assert.Equal(t, "u-1", session.Account.ID)
	assert.Equal(t, []string{"register:success"}, observer.outcomes)
	publisher.AssertExpectations(t)
}

func TestService_Login(t *testing.T) {
	hash := mustHash(t, "secret1")
	touchedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	active := func() *models.Account {
		return &models.Account{ID: "u-1", Email: "alice@x.com", PasswordHash: hash, Role: models.RoleUser, IsActive: true}
	}
	inactive := func() *models.Account {
		a := active()
		a.IsActive = false
		return a
	}

	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(m *MockUserStore)
		wantErr   error
	}{
		{
			name:     "success",
			email:    "Alice@x.com",
			password: "secret1",
			setupMock: func(m *MockUserStore) {
				m.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(active(), nil).Once()
				m.On("TouchUser", mock.Anything, "u-1").Return(touchedAt, nil).Once()
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: "secret1",
			setupMock: func(m *MockUserStore) {
				m.On("GetUserByEmail", mock.Anything, "nobody@x.com").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name:     "wrong password",
			email:    "alice@x.com",
			password: "secret2",
			setupMock: func(m *MockUserStore) {
				m.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(active(), nil).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "inactive account with correct password",
			email:    "alice@x.com",
			password: "secret1",
			setupMock: func(m *MockUserStore) {
				m.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(inactive(), nil).Once()
			},
			wantErr: ErrAccountInactive,
		},
		{
			name:     "inactive account with wrong password",
			email:    "alice@x.com",
			password: "secret2",
			setupMock: func(m *MockUserStore) {
				m.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(inactive(), nil).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "empty password",
			email:    "alice@x.com",
			password: "",
			wantErr:  ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockUserStore)
			if tt.setupMock != nil {
				tt.setupMock(store)
			}
			maker := newTestMaker()
			svc := NewService(store, newTestHasher(), maker, newNoopLogger())

			session, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				store.AssertNotCalled(t, "TouchUser", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, touchedAt, session.Account.UpdatedAt)
				claims, err := maker.ParseToken(session.Token)
				require.NoError(t, err)
				assert.Equal(t, "alice@x.com", claims.Email())
				assert.Equal(t, "USER", claims.Role)
				assert.Equal(t, "u-1", claims.UserID)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestService_Login_StoreFailure(t *testing.T) {
	store := new(MockUserStore)
	store.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, errors.New("timeout")).Once()
	svc := NewService(store, newTestHasher(), newTestMaker(), newNoopLogger())

	_, err := svc.Login(context.Background(), "alice@x.com", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountNotFound)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Refresh(t *testing.T) {
	maker := newTestMaker()
	valid, err := maker.GenerateToken("alice@x.com", "ADMIN", "u-1")
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		setupMock func(m *MockUserStore)
		wantErr   error
	}{
		{
			name:  "success keeps claims",
			token: valid,
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(&models.Account{ID: "u-1", IsActive: true}, nil).Once()
			},
		},
		{
			name:    "malformed token",
			token:   "garbage",
			wantErr: ErrMalformed,
		},
		{
			name:  "deleted account",
			token: valid,
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name:  "inactive account",
			token: valid,
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(&models.Account{ID: "u-1"}, nil).Once()
			},
			wantErr: ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockUserStore)
			if tt.setupMock != nil {
				tt.setupMock(store)
			}
			svc := NewService(store, newTestHasher(), maker, newNoopLogger())

			token, err := svc.Refresh(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, tt.token, token)
				claims, err := maker.ParseToken(token)
				require.NoError(t, err)
				assert.Equal(t, "alice@x.com", claims.Email())
				assert.Equal(t, "ADMIN", claims.Role)
				assert.Equal(t, "u-1", claims.UserID)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestService_Refresh_ExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	old := newTestMakerAt(issuedAt)
	token, err := old.GenerateToken("alice@x.com", "USER", "u-1")
	require.NoError(t, err)

	store := new(MockUserStore)
	svc := NewService(store, newTestHasher(), newTestMaker(), newNoopLogger())

	_, err = svc.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpired)
	store.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestService_Login_KeepsConcurrentWrites(t *testing.T) {
	base := newMemoryStore()
	hasher := newTestHasher()
	ctx := context.Background()

	created, err := base.RegisterUser(ctx, models.Account{
		Email: "alice@x.com", PasswordHash: mustHash(t, "secret1"), Role: models.RoleUser, IsActive: true,
	})
	require.NoError(t, err)
	newHash := mustHash(t, "secret2")

	store := &interleavingStore{memoryStore: base, concurrent: func() {
		require.NoError(t, base.UpdatePassword(ctx, created.ID, newHash))
		base.setActive(created.ID, false)
	}}
	svc := NewService(store, hasher, newTestMaker(), newNoopLogger())

	_, err = svc.Login(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)

	stored, err := base.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, hasher.Verify("secret2", stored.PasswordHash), "password change must survive login")
	assert.False(t, hasher.Verify("secret1", stored.PasswordHash))
	assert.False(t, stored.IsActive, "deactivation must survive login")
}

func TestService_ChangePassword(t *testing.T) {
	hash := mustHash(t, "secret1")
	active := func() *models.Account {
		return &models.Account{ID: "u-1", PasswordHash: hash, IsActive: true}
	}

	tests := []struct {
		name      string
		current   string
		next      string
		setupMock func(m *MockUserStore)
		wantErr   error
	}{
		{
			name:    "success",
			current: "secret1",
			next:    "secret2",
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(active(), nil).Once()
				m.On("UpdatePassword", mock.Anything, "u-1", mock.MatchedBy(func(h string) bool {
					return h != hash && newTestHasher().Verify("secret2", h)
				})).Return(nil).Once()
			},
		},
		{
			name:    "wrong current password",
			current: "nope12",
			next:    "secret2",
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(active(), nil).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "wrong current password hides weak new password",
			current: "nope12",
			next:    "abc",
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(active(), nil).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "wrong current password hides same password",
			current: "nope12",
			next:    "nope12",
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(active(), nil).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "inactive account",
			current: "secret1",
			next:    "secret2",
			setupMock: func(m *MockUserStore) {
				a := active()
				a.IsActive = false
				m.On("GetUser", mock.Anything, "u-1").Return(a, nil).Once()
			},
			wantErr: ErrAccountInactive,
		},
		{
			name:    "same password",
			current: "secret1",
			next:    "secret1",
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(active(), nil).Once()
			},
			wantErr: ErrSamePassword,
		},
		{
			name:    "weak new password",
			current: "secret1",
			next:    "abc",
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(active(), nil).Once()
			},
			wantErr: ErrWeakPassword,
		},
		{
			name:    "deleted account",
			current: "secret1",
			next:    "secret2",
			setupMock: func(m *MockUserStore) {
				m.On("GetUser", mock.Anything, "u-1").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockUserStore)
			tt.setupMock(store)
			svc := NewService(store, newTestHasher(), newTestMaker(), newNoopLogger())

			err := svc.ChangePassword(context.Background(), "u-1", tt.current, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				store.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestService_Logout_DoesNotTouchAccount(t *testing.T) {
	store := new(MockUserStore)
	svc := NewService(store, newTestHasher(), newTestMaker(), newNoopLogger())

	err := svc.Logout(context.Background(), &models.Identity{UserID: "u-1"})
	assert.NoError(t, err)
	store.AssertNotCalled(t, "TouchUser", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestEndToEnd_RegisterResolveLogin(t *testing.T) {
	store := newMemoryStore()
	maker := newTestMaker()
	svc := NewService(store, newTestHasher(), maker, newNoopLogger())
	resolver := NewResolver(maker, store)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)
	t1 := reg.Token

	identity, err := resolver.Resolve(ctx, "Bearer "+t1)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", identity.Email)
	assert.Equal(t, reg.Account.ID, identity.UserID)
	assert.True(t, identity.IsActive)

	login, err := svc.Login(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)
	t2 := login.Token
	assert.NotEqual(t, t1, t2)

	c1, err := maker.ParseToken(t1)
	require.NoError(t, err)
	c2, err := maker.ParseToken(t2)
	require.NoError(t, err)
	assert.Equal(t, c1.UserID, c2.UserID)

	_, err = svc.Register(ctx, RegisterInput{Email: "ALICE@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	store.delete(reg.Account.ID)
	_, err = resolver.Resolve(ctx, "Bearer "+t2)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
