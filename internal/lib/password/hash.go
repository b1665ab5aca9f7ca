// Package password реализует одностороннее хеширование и проверку паролей на основе bcrypt.
//
// Hasher хранит рабочий фактор (cost) и не имеет разделяемого изменяемого состояния,
// поэтому параллельные регистрации и входы не сериализуются друг на друге.
package password

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong возвращается, если пароль длиннее 72 байт (ограничение bcrypt).
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher хеширует и проверяет пароли с заданным рабочим фактором.
type Hasher struct {
	cost  int
	dummy string
}

// NewHasher создает Hasher. Значение cost вне допустимого диапазона bcrypt заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h := &Hasher{cost: cost}
	h.dummy = h.mustDummy()
	return h
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Соль генерируется при каждом вызове, поэтому два вызова для одного пароля дают разные строки.
func (h *Hasher) Hash(plain string) (string, error) {
	const op = "password.Hash"
	if len(plain) > 72 {
		return "", fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сравнивает пароль с bcrypt‑хэшем.
//
// Возвращает false при несовпадении и при повреждённом хэше, никогда не паникует.
func (h *Hasher) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// Dummy возвращает валидный хэш случайного секрета с тем же cost.
// Используется, чтобы вход для несуществующего аккаунта стоил столько же, сколько проверка пароля.
func (h *Hasher) Dummy() string {
	return h.dummy
}

// Cost возвращает рабочий фактор.
func (h *Hasher) Cost() int {
	return h.cost
}

func (h *Hasher) mustDummy() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("password: read random: %v", err))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), h.cost)
	if err != nil {
		panic(fmt.Sprintf("password: dummy hash: %v", err))
	}
	return string(hashed)
}
