package entity

import "time"

// UserSettings preferencias y perfil de un usuario (una fila por usuario).
type UserSettings struct {
	UserID             string
	DisplayName        string
	Phone              string
	Company            string
	Address            string
	Currency           string
	Language           string
	Timezone           string
	Theme              string
	LowStockAlerts     bool
	EmailNotifications bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DefaultUserSettings valores por defecto al primer acceso.
func DefaultUserSettings(userID string, now time.Time) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		Currency:           "INR",
		Language:           "es",
		Timezone:           "UTC",
		Theme:              "light",
		LowStockAlerts:     true,
		EmailNotifications: false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
