package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

const userColumns = `id, email, password_hash, name, phone, city, address, latitude, longitude,
			      avatar_url, company_name, bin, role, balance, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.Account, error) {
	var (
		u        models.Account
		role     string
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.City, &u.Address,
		&lat, &lng, &u.AvatarURL, &u.CompanyName, &u.BIN, &role, &u.Balance, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if lat.Valid {
		u.Latitude = &lat.Float64
	}
	if lng.Valid {
		u.Longitude = &lng.Float64
	}
	return &u, nil
}

// RegisterUser сохраняет новую учётную запись и возвращает её вместе с назначенными
// id и временными метками. При совпадении email возвращает ErrEmailTaken.
func (s *Storage) RegisterUser(ctx context.Context, user models.Account) (*models.Account, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, password_hash, name, phone, city, address, latitude, longitude,
			      avatar_url, company_name, bin, role, balance, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Phone, user.City, user.Address,
		user.Latitude, user.Longitude, user.AvatarURL, user.CompanyName, user.BIN,
		string(user.Role), user.Balance, user.IsActive))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUser возвращает учётную запись по id. Строка, не являющаяся UUID, даёт ErrNotFound.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает учётную запись по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE lower(email) = lower($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UserExists проверяет, занят ли email.
func (s *Storage) UserExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.UserExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetIdentity возвращает только поля, нужные для проверки токена.
func (s *Storage) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	const op = "storage.GetIdentity"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var (
		identity models.Identity
		role     string
	)
	query := `SELECT id, email, role, is_active FROM users WHERE id = $1`
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&identity.UserID, &identity.Email, &role, &identity.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	identity.Role = models.Role(role)
	return &identity, nil
}

// TouchUser выставляет updated_at = now() и возвращает новое значение.
// Остальные колонки не трогаются.
func (s *Storage) TouchUser(ctx context.Context, id string) (time.Time, error) {
	const op = "storage.TouchUser"
	select {
	case <-ctx.Done():
		return time.Time{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var updatedAt time.Time
	err := s.DB.QueryRowContext(ctx,
		`UPDATE users SET updated_at = now() WHERE id = $1 RETURNING updated_at`, id).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return updatedAt, nil
}

// UpdatePassword меняет только хэш пароля.
func (s *Storage) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
	return affectedOne(op, res, err)
}

// UpdateProfile меняет переданные поля профиля одним запросом и возвращает
// учётную запись после изменения.
func (s *Storage) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Account, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name = COALESCE($1, name),
			      phone = COALESCE($2, phone),
			      city = COALESCE($3, city),
			      address = COALESCE($4, address),
			      avatar_url = COALESCE($5, avatar_url),
			      company_name = COALESCE($6, company_name),
			      bin = COALESCE($7, bin),
			      updated_at = now()
			  WHERE id = $8
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		upd.Name, upd.Phone, upd.City, upd.Address, upd.AvatarURL, upd.CompanyName, upd.BIN, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetActive включает или выключает учётную запись.
func (s *Storage) SetActive(ctx context.Context, id string, active bool) error {
	const op = "storage.SetActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	return affectedOne(op, res, err)
}

// AdminUpdateUser меняет переданные администратором поля и возвращает
// учётную запись после изменения.
func (s *Storage) AdminUpdateUser(ctx context.Context, id string, upd models.AdminUpdate) (*models.Account, error) {
	const op = "storage.AdminUpdateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var role *string
	if upd.Role != nil {
		r := string(*upd.Role)
		role = &r
	}
	query := `UPDATE users
			  SET name = COALESCE($1, name),
			      phone = COALESCE($2, phone),
			      city = COALESCE($3, city),
			      role = COALESCE($4, role),
			      is_active = COALESCE($5, is_active),
			      updated_at = now()
			  WHERE id = $6
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		upd.Name, upd.Phone, upd.City, role, upd.IsActive, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// DeleteUser удаляет учётную запись вместе с её картами, адресами и заказами.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if uuid.Validate(id) != nil {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affectedOne(op, res, err)
}

func affectedOne(op string, res sql.Result, err error) error {
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
