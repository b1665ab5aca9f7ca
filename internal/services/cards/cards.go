// Package cards содержит бизнес-логику сохранённых платёжных карт.
// Карты только хранятся: списаний нет, номер целиком в базу не попадает.
package cards

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

var (
	// ErrInvalidCard номер или срок действия не проходят проверку.
	ErrInvalidCard = errors.New("invalid card")
	// ErrCardExpired срок действия карты истёк.
	ErrCardExpired = errors.New("card expired")
	// ErrNotFound карта не найдена среди карт пользователя.
	ErrNotFound = errors.New("card not found")
)

// Repository определяет методы работы с картами в хранилище.
type Repository interface {
	CreateCard(ctx context.Context, card models.Card) (*models.Card, error)
	ListCards(ctx context.Context, userID string) ([]*models.Card, error)
	DeleteCard(ctx context.Context, userID string, id int64) error
}

// CardInput данные новой карты.
type CardInput struct {
	Number      string
	HolderName  string
	ExpiryMonth string
	ExpiryYear  string
	CardType    string
	IsDefault   bool
}

// Service реализует операции с картами.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// List возвращает карты пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Card, error) {
	const op = "cards.List"
	list, err := s.repo.ListCards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Add проверяет и сохраняет карту.
func (s *Service) Add(ctx context.Context, userID string, in CardInput) (*models.Card, error) {
	const op = "cards.Add"

	number := normalizeNumber(in.Number)
	if !validNumber(number) {
		return nil, fmt.Errorf("%w: card number", ErrInvalidCard)
	}
	month, year, err := parseExpiry(in.ExpiryMonth, in.ExpiryYear)
	if err != nil {
		return nil, err
	}
	if expired(month, year, s.now()) {
		return nil, ErrCardExpired
	}

	sum := sha256.Sum256([]byte(number))
	card := models.Card{
		UserID:      userID,
		NumberHash:  hex.EncodeToString(sum[:]),
		Last4:       number[len(number)-4:],
		HolderName:  strings.ToUpper(strings.TrimSpace(in.HolderName)),
		ExpiryMonth: fmt.Sprintf("%02d", month),
		ExpiryYear:  fmt.Sprintf("%02d", year%100),
		CardType:    cardType(in.CardType, number),
		IsDefault:   in.IsDefault,
	}

	created, err := s.repo.CreateCard(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("card added", slog.String("op", op), slog.String("user_id", userID), slog.Int64("card_id", created.ID))
	return created, nil
}

// Remove удаляет карту пользователя.
func (s *Service) Remove(ctx context.Context, userID string, id int64) error {
	const op = "cards.Remove"
	if err := s.repo.DeleteCard(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func normalizeNumber(n string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(n)
}

// validNumber проверяет длину, цифры и контрольную сумму Луна.
func validNumber(n string) bool {
	if len(n) < 12 || len(n) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(n) - 1; i >= 0; i-- {
		d := int(n[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func parseExpiry(m, y string) (int, int, error) {
	month, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: expiry month", ErrInvalidCard)
	}
	year, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil || year < 0 {
		return 0, 0, fmt.Errorf("%w: expiry year", ErrInvalidCard)
	}
	if year < 100 {
		year += 2000
	}
	return month, year, nil
}

// expired карта действует до конца месяца истечения включительно.
func expired(month, year int, now time.Time) bool {
	end := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.UTC().Before(end)
}

func cardType(given, number string) string {
	if t := strings.ToUpper(strings.TrimSpace(given)); t != "" {
		return t
	}
	switch {
	case strings.HasPrefix(number, "4"):
		return "VISA"
	case number[0] == '5' || strings.HasPrefix(number, "2"):
		return "MASTERCARD"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "AMEX"
	default:
		return "OTHER"
	}
}
