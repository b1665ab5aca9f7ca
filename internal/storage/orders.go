package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// CreateOrder сохраняет заказ, позиции хранятся в jsonb.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO orders (user_id, restaurant_name, items, delivery_address, total, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, created_at`
	if err = s.DB.QueryRowContext(ctx, query,
		order.UserID, order.RestaurantName, items, order.DeliveryAddress, order.Total, order.Status,
	).Scan(&order.ID, &order.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// ListOrders возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	const op = "storage.ListOrders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, restaurant_name, items, delivery_address, total, status, created_at
			  FROM orders
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Order
	for rows.Next() {
		var (
			o     models.Order
			items []byte
		)
		if err = rows.Scan(&o.ID, &o.UserID, &o.RestaurantName, &items, &o.DeliveryAddress,
			&o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
