package models

import "time"

// Location адрес доставки пользователя.
type Location struct {
	ID        int64
	UserID    string
	Label     string
	Address   string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}
