package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// Колонки, по которым разрешена сортировка списка учётных записей.
var userSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ListUsers возвращает страницу учётных записей по фильтру и общее число
// подходящих записей. Неизвестная колонка сортировки заменяется на created_at.
func (s *Storage) ListUsers(ctx context.Context, f models.UserFilter) ([]*models.Account, int, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s OR phone ILIKE %[1]s OR company_name ILIKE %[1]s)", p))
	}
	if f.Role != "" {
		where = append(where, "role = "+arg(string(f.Role)))
	}
	if f.IsActive != nil {
		where = append(where, "is_active = "+arg(*f.IsActive))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	column, ok := userSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "ASC"
	if f.Desc {
		order = "DESC"
	}
	query := `SELECT ` + userColumns + ` FROM users` + cond +
		` ORDER BY ` + column + ` ` + order + `, id ` + order +
		` LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Account
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// RoleStats возвращает число учётных записей по ролям.
func (s *Storage) RoleStats(ctx context.Context) ([]models.RoleStat, error) {
	const op = "storage.RoleStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT role, COUNT(*), COUNT(*) FILTER (WHERE is_active)
			  FROM users
			  GROUP BY role
			  ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []models.RoleStat
	for rows.Next() {
		var (
			st   models.RoleStat
			role string
		)
		if err = rows.Scan(&role, &st.Total, &st.Active); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		st.Role = models.Role(role)
		stats = append(stats, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
