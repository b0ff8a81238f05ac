package entity

import "time"

// Estados posibles de un usuario.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User cuenta local del sistema de facturación. El hash de password
// se genera con bcrypt en el caso de uso, nunca se expone por la API.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Activo indica si el usuario puede iniciar sesión.
func (u *User) Activo() bool {
	return u.Status == UserStatusActive
}
