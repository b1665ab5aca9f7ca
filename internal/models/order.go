package models

import "time"

// OrderStatusCreated статус только что оформленного заказа.
const OrderStatusCreated = "CREATED"

// Order заказ пользователя.
type Order struct {
	ID              int64
	UserID          string
	RestaurantName  string
	Items           []OrderItem
	DeliveryAddress string
	Total           float64
	Status          string
	CreatedAt       time.Time
}

// OrderItem позиция заказа.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CalculateTotal считает сумму заказа по позициям.
func CalculateTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * it.Price
	}
	return total
}
