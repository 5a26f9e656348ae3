package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la configuración de impuestos.
const (
	TaxStatusActive   = "active"
	TaxStatusInactive = "inactive"
)

// TaxRate tasa con interruptor.
type TaxRate struct {
	Enabled bool            `json:"enabled"`
	Rate    decimal.Decimal `json:"rate"` // porcentaje, ej. 18 = 18%
}

// TaxChange entrada permanente del historial de cambios.
type TaxChange struct {
	ChangedBy   string    `json:"changedBy"`
	ChangedAt   time.Time `json:"changedAt"`
	Description string    `json:"description"`
	Before      FieldSet  `json:"before,omitempty"`
	After       FieldSet  `json:"after,omitempty"`
}

// TaxConfig configuración global única (IsGlobal) de impuestos.
type TaxConfig struct {
	ID            string
	IsGlobal      bool
	GST           TaxRate
	PlatformFee   TaxRate
	Status        string
	ChangeHistory []TaxChange
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultTaxConfig valores iniciales: GST 18% deshabilitado, fee 0% deshabilitado.
func DefaultTaxConfig(id string, now time.Time) *TaxConfig {
	return &TaxConfig{
		ID:            id,
		IsGlobal:      true,
		GST:           TaxRate{Enabled: false, Rate: decimal.NewFromInt(18)},
		PlatformFee:   TaxRate{Enabled: false, Rate: decimal.Zero},
		Status:        TaxStatusActive,
		ChangeHistory: []TaxChange{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
