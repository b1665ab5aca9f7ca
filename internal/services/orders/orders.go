// Package orders содержит бизнес-логику заказов. Заказ только фиксируется,
// дальнейшая обработка не выполняется.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// ErrInvalidOrder заказ без позиций или с некорректной позицией.
var ErrInvalidOrder = errors.New("invalid order")

const (
	// DefaultLimit размер страницы по умолчанию.
	DefaultLimit = 20
	// MaxLimit максимальный размер страницы.
	MaxLimit = 100
)

// Repository определяет методы работы с заказами в хранилище.
type Repository interface {
	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error)
}

// OrderInput данные нового заказа.
type OrderInput struct {
	RestaurantName  string
	Items           []models.OrderItem
	DeliveryAddress string
}

// Service реализует операции с заказами.
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

// List возвращает страницу заказов пользователя, новые первыми.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	const op = "orders.List"
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.ListOrders(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Create проверяет позиции, считает сумму и сохраняет заказ.
func (s *Service) Create(ctx context.Context, userID string, in OrderInput) (*models.Order, error) {
	const op = "orders.Create"

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrInvalidOrder, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidOrder, i)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("%w: item %d price must not be negative", ErrInvalidOrder, i)
		}
	}

	order, err := s.repo.CreateOrder(ctx, models.Order{
		UserID:          userID,
		RestaurantName:  strings.TrimSpace(in.RestaurantName),
		Items:           in.Items,
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		Total:           models.CalculateTotal(in.Items),
		Status:          models.OrderStatusCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("order created", slog.String("op", op), slog.String("user_id", userID), slog.Int64("order_id", order.ID))
	return order, nil
}
