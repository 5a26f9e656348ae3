package entity

import "time"

// UnitType unidad de medida (kg, caja, litro...) de un usuario.
type UnitType struct {
	ID              string
	UserID          string
	Name            string
	NameKey         string
	Abbreviation    string
	AbbreviationKey string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
