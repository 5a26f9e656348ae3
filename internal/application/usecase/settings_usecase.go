package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// SettingsUseCase preferencias por usuario, creadas con defaults en el primer acceso.
type SettingsUseCase struct {
	repo repository.UserSettingsRepository
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(repo repository.UserSettingsRepository) *SettingsUseCase {
	return &SettingsUseCase{repo: repo}
}

// Get devuelve las preferencias del actor.
func (uc *SettingsUseCase) Get(ctx context.Context, actor entity.Actor) (*dto.SettingsResponse, error) {
	s, err := uc.repo.GetOrCreate(ctx, entity.DefaultUserSettings(actor.UserID, time.Now().UTC()))
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(s), nil
}

// Update aplica un merge parcial.
func (uc *SettingsUseCase) Update(ctx context.Context, actor entity.Actor, in dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	s, err := uc.repo.GetOrCreate(ctx, entity.DefaultUserSettings(actor.UserID, time.Now().UTC()))
	if err != nil {
		return nil, err
	}
	setString(&s.DisplayName, in.DisplayName)
	setString(&s.Phone, in.Phone)
	setString(&s.Company, in.Company)
	setString(&s.Address, in.Address)
	setString(&s.Currency, in.Currency)
	setString(&s.Language, in.Language)
	setString(&s.Timezone, in.Timezone)
	setString(&s.Theme, in.Theme)
	if in.LowStockAlerts != nil {
		s.LowStockAlerts = *in.LowStockAlerts
	}
	if in.EmailNotifications != nil {
		s.EmailNotifications = *in.EmailNotifications
	}
	s.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSettingsResponse(s), nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func toSettingsResponse(s *entity.UserSettings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		UserID:             s.UserID,
		DisplayName:        s.DisplayName,
		Phone:              s.Phone,
		Company:            s.Company,
		Address:            s.Address,
		Currency:           s.Currency,
		Language:           s.Language,
		Timezone:           s.Timezone,
		Theme:              s.Theme,
		LowStockAlerts:     s.LowStockAlerts,
		EmailNotifications: s.EmailNotifications,
		UpdatedAt:          s.UpdatedAt,
	}
}
