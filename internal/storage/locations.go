package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// CreateLocation сохраняет адрес и делает его текущим адресом пользователя.
func (s *Storage) CreateLocation(ctx context.Context, loc models.Location) (*models.Location, error) {
	const op = "storage.CreateLocation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO user_locations (user_id, label, address, latitude, longitude)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at`
	if err = tx.QueryRowContext(ctx, query,
		loc.UserID, loc.Label, loc.Address, loc.Latitude, loc.Longitude,
	).Scan(&loc.ID, &loc.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET address = $1, latitude = $2, longitude = $3, updated_at = now() WHERE id = $4`,
		loc.Address, loc.Latitude, loc.Longitude, loc.UserID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &loc, nil
}

// ListLocations возвращает адреса пользователя, новые первыми.
func (s *Storage) ListLocations(ctx context.Context, userID string) ([]*models.Location, error) {
	const op = "storage.ListLocations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, label, address, latitude, longitude, created_at
			  FROM user_locations
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Location
	for rows.Next() {
		var l models.Location
		if err = rows.Scan(&l.ID, &l.UserID, &l.Label, &l.Address, &l.Latitude, &l.Longitude, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
