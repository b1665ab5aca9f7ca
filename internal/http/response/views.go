package response

import (
	"time"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// User публичное представление учётной записи. Хэш пароля сюда не попадает.
type User struct {
	ID          string   `json:"id" example:"4b6f1c1e-3a51-4c57-9a6b-1f6c2f7f2a10"`
	Email       string   `json:"email" example:"alice@x.com"`
	Name        string   `json:"name" example:"Alice"`
	Phone       string   `json:"phone" example:"+77000000000"`
	City        string   `json:"city" example:"Almaty"`
	Address     string   `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	AvatarURL   string   `json:"avatarUrl,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
	BIN         string   `json:"bin,omitempty"`
	Role        string   `json:"role" example:"USER"`
	Balance     float64  `json:"balance" example:"5000"`
	IsActive    bool     `json:"isActive" example:"true"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// NewUser строит представление учётной записи.
func NewUser(a *models.Account) User {
	return User{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Phone:       a.Phone,
		City:        a.City,
		Address:     a.Address,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		AvatarURL:   a.AvatarURL,
		CompanyName: a.CompanyName,
		BIN:         a.BIN,
		Role:        a.Role.String(),
		Balance:     a.Balance,
		IsActive:    a.IsActive,
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
}

// IdentityUser представление подтверждённой личности для /api/auth/me.
type IdentityUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// AuthResponse ответ регистрации и входа.
type AuthResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// TokenResponse ответ обновления токена.
type TokenResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token"`
}

// MeResponse ответ /api/auth/me.
type MeResponse struct {
	Success bool         `json:"success" example:"true"`
	User    IdentityUser `json:"user"`
}

// UserResponse ответ с профилем.
type UserResponse struct {
	Success bool `json:"success" example:"true"`
	User    User `json:"user"`
}

// ResetTokenResponse ответ на подтверждённый код восстановления.
type ResetTokenResponse struct {
	Success    bool   `json:"success" example:"true"`
	ResetToken string `json:"resetToken"`
	ExpiresIn  int    `json:"expiresIn" example:"900"`
}

// Pagination параметры страницы списка.
type Pagination struct {
	Total  int `json:"total" example:"42"`
	Limit  int `json:"limit" example:"20"`
	Offset int `json:"offset" example:"0"`
}

// UsersResponse страница учётных записей для администратора.
type UsersResponse struct {
	Success    bool       `json:"success" example:"true"`
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// NewUsers строит ответ со страницей учётных записей.
func NewUsers(list []*models.Account, total, limit, offset int) UsersResponse {
	out := make([]User, 0, len(list))
	for _, a := range list {
		out = append(out, NewUser(a))
	}
	return UsersResponse{
		Success:    true,
		Users:      out,
		Pagination: Pagination{Total: total, Limit: limit, Offset: offset},
	}
}

// RoleStat число учётных записей с ролью.
type RoleStat struct {
	Role   string `json:"role" example:"USER"`
	Total  int    `json:"total"`
	Active int    `json:"active"`
}

// StatsResponse сводка по учётным записям.
type StatsResponse struct {
	Success     bool       `json:"success" example:"true"`
	TotalUsers  int        `json:"totalUsers"`
	ActiveUsers int        `json:"activeUsers"`
	Roles       []RoleStat `json:"roles"`
}

// NewStats строит сводку; пустой список ролей отдаётся как [].
func NewStats(total, active int, roles []models.RoleStat) StatsResponse {
	out := make([]RoleStat, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleStat{Role: r.Role.String(), Total: r.Total, Active: r.Active})
	}
	return StatsResponse{Success: true, TotalUsers: total, ActiveUsers: active, Roles: out}
}

// Card представление сохранённой карты.
type Card struct {
	ID          int64  `json:"id"`
	Last4       string `json:"last4" example:"4242"`
	MaskedNum   string `json:"maskedNumber" example:"**** **** **** 4242"`
	HolderName  string `json:"cardHolderName"`
	ExpiryMonth string `json:"expiryMonth" example:"12"`
	ExpiryYear  string `json:"expiryYear" example:"30"`
	CardType    string `json:"cardType" example:"VISA"`
	IsDefault   bool   `json:"isDefault"`
	CreatedAt   string `json:"createdAt"`
}

// NewCard строит представление карты.
func NewCard(c *models.Card) Card {
	return Card{
		ID:          c.ID,
		Last4:       c.Last4,
		MaskedNum:   "**** **** **** " + c.Last4,
		HolderName:  c.HolderName,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		CardType:    c.CardType,
		IsDefault:   c.IsDefault,
		CreatedAt:   formatTime(c.CreatedAt),
	}
}

// CardResponse ответ с одной картой.
type CardResponse struct {
	Success bool `json:"success" example:"true"`
	Card    Card `json:"card"`
}

// CardsResponse ответ со списком карт.
type CardsResponse struct {
	Success bool   `json:"success" example:"true"`
	Cards   []Card `json:"cards"`
}

// NewCards строит ответ со списком карт; пустой список отдаётся как [].
func NewCards(list []*models.Card) CardsResponse {
	out := make([]Card, 0, len(list))
	for _, c := range list {
		out = append(out, NewCard(c))
	}
	return CardsResponse{Success: true, Cards: out}
}

// Location представление адреса.
type Location struct {
	ID        int64   `json:"id"`
	Label     string  `json:"label,omitempty"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CreatedAt string  `json:"createdAt"`
}

// NewLocation строит представление адреса.
func NewLocation(l *models.Location) Location {
	return Location{
		ID:        l.ID,
		Label:     l.Label,
		Address:   l.Address,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		CreatedAt: formatTime(l.CreatedAt),
	}
}

// LocationResponse ответ с одним адресом.
type LocationResponse struct {
	Success  bool     `json:"success" example:"true"`
	Location Location `json:"location"`
}

// LocationsResponse ответ со списком адресов.
type LocationsResponse struct {
	Success   bool       `json:"success" example:"true"`
	Locations []Location `json:"locations"`
}

// NewLocations строит ответ со списком адресов.
func NewLocations(list []*models.Location) LocationsResponse {
	out := make([]Location, 0, len(list))
	for _, l := range list {
		out = append(out, NewLocation(l))
	}
	return LocationsResponse{Success: true, Locations: out}
}

// Order представление заказа.
type Order struct {
	ID              int64              `json:"id"`
	RestaurantName  string             `json:"restaurantName"`
	Items           []models.OrderItem `json:"items"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Total           float64            `json:"total"`
	Status          string             `json:"status" example:"CREATED"`
	CreatedAt       string             `json:"createdAt"`
}

// NewOrder строит представление заказа.
func NewOrder(o *models.Order) Order {
	items := o.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return Order{
		ID:              o.ID,
		RestaurantName:  o.RestaurantName,
		Items:           items,
		DeliveryAddress: o.DeliveryAddress,
		Total:           o.Total,
		Status:          o.Status,
		CreatedAt:       formatTime(o.CreatedAt),
	}
}

// OrderResponse ответ с одним заказом.
type OrderResponse struct {
	Success bool  `json:"success" example:"true"`
	Order   Order `json:"order"`
}

// OrdersResponse ответ со списком заказов.
type OrdersResponse struct {
	Success bool    `json:"success" example:"true"`
	Orders  []Order `json:"orders"`
}

// NewOrders строит ответ со списком заказов.
func NewOrders(list []*models.Order) OrdersResponse {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		out = append(out, NewOrder(o))
	}
	return OrdersResponse{Success: true, Orders: out}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
