// Package locations содержит бизнес-логику адресов доставки.
package locations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// ErrInvalidLocation адрес пуст или координаты вне допустимого диапазона.
var ErrInvalidLocation = errors.New("invalid location")

// Repository определяет методы работы с адресами в хранилище.
type Repository interface {
	CreateLocation(ctx context.Context, loc models.Location) (*models.Location, error)
	ListLocations(ctx context.Context, userID string) ([]*models.Location, error)
}

// LocationInput данные нового адреса.
type LocationInput struct {
	Label     string
	Address   string
	Latitude  float64
	Longitude float64
}

// Service реализует операции с адресами.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// List возвращает адреса пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Location, error) {
	const op = "locations.List"
	list, err := s.repo.ListLocations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Add сохраняет адрес и делает его текущим адресом учётной записи.
func (s *Service) Add(ctx context.Context, userID string, in LocationInput) (*models.Location, error) {
	const op = "locations.Add"

	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidLocation)
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return nil, fmt.Errorf("%w: latitude out of range", ErrInvalidLocation)
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return nil, fmt.Errorf("%w: longitude out of range", ErrInvalidLocation)
	}

	loc, err := s.repo.CreateLocation(ctx, models.Location{
		UserID:    userID,
		Label:     strings.TrimSpace(in.Label),
		Address:   address,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("location added", slog.String("op", op), slog.String("user_id", userID), slog.Int64("location_id", loc.ID))
	return loc, nil
}
