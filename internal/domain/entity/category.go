package entity

import "time"

// Category representa una categoría de productos de un usuario.
type Category struct {
	ID          string
	UserID      string
	Name        string
	NameKey     string // nombre plegado, único por dueño
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
