package models

// Identity результат успешной проверки заголовка Authorization.
// Живёт в пределах одного запроса.
type Identity struct {
	UserID   string
	Email    string
	Role     Role
	IsActive bool
}
