package models

import "time"

// Card сохранённая платёжная карта. Номер целиком не хранится:
// только последние четыре цифры и SHA-256 от номера.
type Card struct {
	ID          int64
	UserID      string
	NumberHash  string
	Last4       string
	HolderName  string
	ExpiryMonth string
	ExpiryYear  string
	CardType    string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
