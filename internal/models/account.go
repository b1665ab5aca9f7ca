// Package models содержит доменные структуры сервиса: учётную запись,
// роль, аутентифицированную личность и ресурсы пользователя
// (карты, адреса доставки, заказы). Структуры используются в бизнес-логике
// и при работе с хранилищем, в HTTP-ответы напрямую не попадают.
package models

import (
	"errors"
	"strings"
	"time"
)

// Значения по умолчанию для новой учётной записи.
const (
	DefaultBalance = 5000
	DefaultCity    = "Almaty"
	DefaultPhone   = "+77000000000"
)

// ErrUnknownRole возвращается ParseRole для значения вне известного набора ролей.
var ErrUnknownRole = errors.New("unknown role")

// Role роль учётной записи.
type Role string

const (
	// RoleUser обычный покупатель, роль по умолчанию при регистрации.
	RoleUser Role = "USER"
	// RoleAdmin администратор платформы.
	RoleAdmin Role = "ADMIN"
	// RoleBusiness заведение, выставляющее еду.
	RoleBusiness Role = "BUSINESS"
)

// ParseRole приводит строку из хранилища или токена к Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin, RoleBusiness:
		return r, nil
	default:
		return "", ErrUnknownRole
	}
}

func (r Role) String() string {
	return string(r)
}

// Account учётная запись пользователя.
type Account struct {
	ID           string // UUID, назначается хранилищем
	Email        string // всегда в нижнем регистре
	PasswordHash string
	Name         string
	Phone        string
	City         string
	Address      string
	Latitude     *float64
	Longitude    *float64
	AvatarURL    string
	CompanyName  string
	BIN          string // БИН заведения для роли BUSINESS
	Role         Role
	Balance      float64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate изменяемые пользователем поля профиля. nil означает «не менять».
type ProfileUpdate struct {
	Name        *string
	Phone       *string
	City        *string
	Address     *string
	AvatarURL   *string
	CompanyName *string
	BIN         *string
}

// AdminUpdate поля учётной записи, которые меняет администратор. nil означает «не менять».
type AdminUpdate struct {
	Name     *string
	Phone    *string
	City     *string
	Role     *Role
	IsActive *bool
}

// UserFilter параметры выборки учётных записей для администратора.
type UserFilter struct {
	Search   string // подстрока имени, email, телефона или названия заведения
	Role     Role   // пусто: любая роль
	IsActive *bool
	SortBy   string
	Desc     bool
	Limit    int
	Offset   int
}

// RoleStat число учётных записей с ролью и из них активных.
type RoleStat struct {
	Role   Role
	Total  int
	Active int
}
