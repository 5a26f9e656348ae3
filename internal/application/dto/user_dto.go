package dto

import "time"

// RegisterRequest entrada para registro: email, password y nombre.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserListResponse lista paginada de usuarios (admin).
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// UpdateUserRequest edición de usuario por el admin.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
	Status   *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// SettingsResponse preferencias del usuario.
type SettingsResponse struct {
	UserID             string    `json:"userId"`
	DisplayName        string    `json:"displayName"`
	Phone              string    `json:"phone"`
	Company            string    `json:"company"`
	Address            string    `json:"address"`
	Currency           string    `json:"currency"`
	Language           string    `json:"language"`
	Timezone           string    `json:"timezone"`
	Theme              string    `json:"theme"`
	LowStockAlerts     bool      `json:"lowStockAlerts"`
	EmailNotifications bool      `json:"emailNotifications"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// UpdateSettingsRequest merge parcial de preferencias.
type UpdateSettingsRequest struct {
	DisplayName        *string `json:"displayName" validate:"omitempty,max=200"`
	Phone              *string `json:"phone" validate:"omitempty,max=50"`
	Company            *string `json:"company" validate:"omitempty,max=200"`
	Address            *string `json:"address" validate:"omitempty,max=500"`
	Currency           *string `json:"currency" validate:"omitempty,len=3"`
	Language           *string `json:"language" validate:"omitempty,min=2,max=10"`
	Timezone           *string `json:"timezone" validate:"omitempty,max=64"`
	Theme              *string `json:"theme" validate:"omitempty,oneof=light dark system"`
	LowStockAlerts     *bool   `json:"lowStockAlerts"`
	EmailNotifications *bool   `json:"emailNotifications"`
}
