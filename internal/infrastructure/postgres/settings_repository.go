package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.UserSettingsRepository = (*UserSettingsRepo)(nil)

const settingsColumns = `user_id, display_name, phone, company, address, currency, language, timezone, theme,
	low_stock_alerts, email_notifications, created_at, updated_at`

// UserSettingsRepo una fila por usuario (user_id es la clave primaria).
type UserSettingsRepo struct {
	q Querier
}

func NewUserSettingsRepository(q Querier) *UserSettingsRepo {
	return &UserSettingsRepo{q: q}
}

func (r *UserSettingsRepo) GetOrCreate(ctx context.Context, d *entity.UserSettings) (*entity.UserSettings, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_settings (`+settingsColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO NOTHING`,
		d.UserID, d.DisplayName, d.Phone, d.Company, d.Address, d.Currency, d.Language, d.Timezone, d.Theme,
		d.LowStockAlerts, d.EmailNotifications, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user settings: %w", err)
	}
	var s entity.UserSettings
	err = r.q.QueryRow(ctx, `SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`, d.UserID).Scan(
		&s.UserID, &s.DisplayName, &s.Phone, &s.Company, &s.Address, &s.Currency, &s.Language, &s.Timezone,
		&s.Theme, &s.LowStockAlerts, &s.EmailNotifications, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return &s, nil
}

func (r *UserSettingsRepo) Update(ctx context.Context, s *entity.UserSettings) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE user_settings SET display_name = $2, phone = $3, company = $4, address = $5, currency = $6,
			language = $7, timezone = $8, theme = $9, low_stock_alerts = $10, email_notifications = $11, updated_at = now()
		WHERE user_id = $1`,
		s.UserID, s.DisplayName, s.Phone, s.Company, s.Address, s.Currency, s.Language, s.Timezone, s.Theme,
		s.LowStockAlerts, s.EmailNotifications,
	)
	if err != nil {
		return fmt.Errorf("update user settings: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
