package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.TaxConfigRepository = (*TaxConfigRepo)(nil)

const taxColumns = `id, is_global, gst_enabled, gst_rate, platform_fee_enabled, platform_fee_rate, status,
	change_history, updated_by, created_at, updated_at`

// TaxConfigRepo singleton global de impuestos. El índice único parcial sobre is_global impide un segundo registro.
type TaxConfigRepo struct {
	q Querier
}

func NewTaxConfigRepository(q Querier) *TaxConfigRepo {
	return &TaxConfigRepo{q: q}
}

func (r *TaxConfigRepo) GetGlobal(ctx context.Context) (*entity.TaxConfig, error) {
	var c entity.TaxConfig
	err := r.q.QueryRow(ctx, `SELECT `+taxColumns+` FROM tax_configs WHERE is_global`).Scan(
		&c.ID, &c.IsGlobal, &c.GST.Enabled, &c.GST.Rate, &c.PlatformFee.Enabled, &c.PlatformFee.Rate,
		&c.Status, &c.ChangeHistory, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tax config: %w", err)
	}
	if c.ChangeHistory == nil {
		c.ChangeHistory = []entity.TaxChange{}
	}
	return &c, nil
}

// CreateGlobal si otra request ganó la carrera, ON CONFLICT no inserta y se devuelve la existente.
func (r *TaxConfigRepo) CreateGlobal(ctx context.Context, cfg *entity.TaxConfig) (*entity.TaxConfig, error) {
	history := cfg.ChangeHistory
	if history == nil {
		history = []entity.TaxChange{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO tax_configs (id, is_global, gst_enabled, gst_rate, platform_fee_enabled, platform_fee_rate,
			status, change_history, updated_by, created_at, updated_at)
		VALUES ($1, TRUE, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (is_global) WHERE is_global DO NOTHING`,
		cfg.ID, cfg.GST.Enabled, cfg.GST.Rate, cfg.PlatformFee.Enabled, cfg.PlatformFee.Rate,
		cfg.Status, history, cfg.UpdatedBy, cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tax config: %w", err)
	}
	return r.GetGlobal(ctx)
}

// Save escribe los valores actuales y agrega change al final del historial.
func (r *TaxConfigRepo) Save(ctx context.Context, cfg *entity.TaxConfig, change entity.TaxChange) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE tax_configs SET gst_enabled = $2, gst_rate = $3, platform_fee_enabled = $4, platform_fee_rate = $5,
			status = $6, updated_by = $7, updated_at = $8, change_history = change_history || $9::jsonb
		WHERE id = $1`,
		cfg.ID, cfg.GST.Enabled, cfg.GST.Rate, cfg.PlatformFee.Enabled, cfg.PlatformFee.Rate,
		cfg.Status, cfg.UpdatedBy, cfg.UpdatedAt, []entity.TaxChange{change},
	)
	if err != nil {
		return fmt.Errorf("update tax config: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
