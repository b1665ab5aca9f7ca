package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// CreateCard сохраняет карту. Если карта отмечена как основная, флаг снимается
// с остальных карт владельца в той же транзакции.
func (s *Storage) CreateCard(ctx context.Context, card models.Card) (*models.Card, error) {
	const op = "storage.CreateCard"
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

	if card.IsDefault {
		if _, err = tx.ExecContext(ctx,
			`UPDATE user_cards SET is_default = false, updated_at = now() WHERE user_id = $1`,
			card.UserID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `INSERT INTO user_cards (user_id, card_number_hash, card_last4, card_holder_name,
			      expiry_month, expiry_year, card_type, is_default)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at, updated_at`
	if err = tx.QueryRowContext(ctx, query,
		card.UserID, card.NumberHash, card.Last4, card.HolderName,
		card.ExpiryMonth, card.ExpiryYear, card.CardType, card.IsDefault,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &card, nil
}

// ListCards возвращает карты пользователя, основная первой.
func (s *Storage) ListCards(ctx context.Context, userID string) ([]*models.Card, error) {
	const op = "storage.ListCards"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, card_number_hash, card_last4, card_holder_name,
			      expiry_month, expiry_year, card_type, is_default, created_at, updated_at
			  FROM user_cards
			  WHERE user_id = $1
			  ORDER BY is_default DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Card
	for rows.Next() {
		var c models.Card
		if err = rows.Scan(&c.ID, &c.UserID, &c.NumberHash, &c.Last4, &c.HolderName,
			&c.ExpiryMonth, &c.ExpiryYear, &c.CardType, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteCard удаляет карту владельца. Чужая или несуществующая карта даёт ErrNotFound.
func (s *Storage) DeleteCard(ctx context.Context, userID string, id int64) error {
	const op = "storage.DeleteCard"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM user_cards WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
