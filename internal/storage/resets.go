package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreatePasswordReset сохраняет хэш кода восстановления пароля. Прежний код
// пользователя и все просроченные коды удаляются в той же транзакции.
func (s *Storage) CreatePasswordReset(ctx context.Context, userID, codeHash string, ttl time.Duration) error {
	const op = "storage.CreatePasswordReset"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM password_resets WHERE user_id = $1 OR expires_at < now()`, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO password_resets (user_id, code_hash, expires_at)
		 VALUES ($1, $2, now() + make_interval(secs => $3))`,
		userID, codeHash, ttl.Seconds()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TakeResetAttempt засчитывает попытку ввода кода и возвращает хэш действующего
// кода. Если кода нет, он просрочен, использован или попытки исчерпаны,
// возвращает ErrNotFound.
func (s *Storage) TakeResetAttempt(ctx context.Context, userID string, maxAttempts int) (string, error) {
	const op = "storage.TakeResetAttempt"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var codeHash string
	err := s.DB.QueryRowContext(ctx, `UPDATE password_resets
			  SET attempts = attempts + 1
			  WHERE user_id = $1 AND NOT used AND expires_at > now() AND attempts < $2
			  RETURNING code_hash`, userID, maxAttempts).Scan(&codeHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return codeHash, nil
}

// SetResetToken привязывает хэш токена сброса к подтверждённому коду.
func (s *Storage) SetResetToken(ctx context.Context, userID, codeHash, tokenHash string) error {
	const op = "storage.SetResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE password_resets
			  SET token_hash = $1
			  WHERE user_id = $2 AND code_hash = $3 AND NOT used AND expires_at > now()`,
		tokenHash, userID, codeHash)
	return affectedOne(op, res, err)
}

// ResetPassword погашает токен сброса и меняет хэш пароля в одной транзакции.
// Возвращает id учётной записи. Неизвестный, просроченный или уже
// использованный токен даёт ErrNotFound.
func (s *Storage) ResetPassword(ctx context.Context, tokenHash, passwordHash string) (string, error) {
	const op = "storage.ResetPassword"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userID string
	err = tx.QueryRowContext(ctx, `UPDATE password_resets
			  SET used = TRUE
			  WHERE token_hash = $1 AND NOT used AND expires_at > now()
			  RETURNING user_id`, tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		passwordHash, userID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userID, nil
}
