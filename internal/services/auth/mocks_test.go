package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/foodshare/internal/lib/jwt"
	"github.com/magabrotheeeer/foodshare/internal/lib/password"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

const testSecret = "test_secret_key_1234567890_abcdefgh"

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestHasher() *password.Hasher {
	return password.NewHasher(bcrypt.MinCost)
}

func newTestMaker() *jwt.MakerImpl {
	return jwt.NewJWTMaker(testSecret, time.Hour)
}

func newTestMakerAt(now time.Time) *jwt.MakerImpl {
	return jwt.NewJWTMaker(testSecret, time.Hour, jwt.WithClock(func() time.Time { return now }))
}

// MockUserStore мок хранилища учётных записей.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) RegisterUser(ctx context.Context, user models.Account) (*models.Account, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserStore) GetUser(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserStore) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserStore) UserExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) TouchUser(ctx context.Context, id string) (time.Time, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockPublisher мок публикации событий.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) AccountRegistered(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// recordingObserver запоминает исходы операций.
type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) AuthAttempt(operation, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, operation+":"+outcome)
}

// memoryStore хранилище в памяти для сквозных тестов.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: make(map[string]models.Account)}
}

func (s *memoryStore) RegisterUser(_ context.Context, user models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, user.Email) {
			return nil, storage.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.accounts[user.ID] = user
	return &user, nil
}

func (s *memoryStore) GetUser(_ context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (s *memoryStore) GetUserByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memoryStore) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (s *memoryStore) GetIdentity(_ context.Context, id string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &models.Identity{UserID: a.ID, Email: a.Email, Role: a.Role, IsActive: a.IsActive}, nil
}

func (s *memoryStore) TouchUser(_ context.Context, id string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return time.Time{}, storage.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	s.accounts[id] = a
	return a.UpdatedAt, nil
}

func (s *memoryStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now()
	s.accounts[id] = a
	return nil
}

func (s *memoryStore) setActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[id]
	a.IsActive = active
	s.accounts[id] = a
}

// interleavingStore отдаёт снимок учётной записи, после чего применяет
// параллельную запись, как если бы она завершилась между чтением и записью Login.
type interleavingStore struct {
	*memoryStore
	concurrent func()
}

func (s *interleavingStore) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	snapshot, err := s.memoryStore.GetUserByEmail(ctx, email)
	if err == nil && s.concurrent != nil {
		s.concurrent()
		s.concurrent = nil
	}
	return snapshot, err
}

func (s *memoryStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := newTestHasher().Hash(plain)
	if err != nil {
		t.Fatal(err)
	}
	return h
}
