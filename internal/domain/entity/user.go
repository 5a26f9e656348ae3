package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, user
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor es la identidad autenticada que ejecuta una operación (la resuelve el Auth Gate).
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin indica si el actor ve todos los recursos.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// OwnerScope devuelve el filtro de dueño para consultas: vacío significa "todos" (admin).
func (a Actor) OwnerScope() string {
	if a.IsAdmin() {
		return ""
	}
	return a.UserID
}
