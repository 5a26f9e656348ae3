package memory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var (
	_ repository.TaxConfigRepository    = (*TaxConfigRepo)(nil)
	_ repository.UserSettingsRepository = (*UserSettingsRepo)(nil)
)

// TaxConfigRepo singleton global de impuestos en memoria.
type TaxConfigRepo struct {
	s *Store
}

func (r *TaxConfigRepo) GetGlobal(_ context.Context) (*entity.TaxConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyTax(r.s.tax), nil
}

func (r *TaxConfigRepo) CreateGlobal(_ context.Context, cfg *entity.TaxConfig) (*entity.TaxConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tax == nil {
		r.s.tax = copyTax(cfg)
	}
	return copyTax(r.s.tax), nil
}

func (r *TaxConfigRepo) Save(_ context.Context, cfg *entity.TaxConfig, change entity.TaxChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tax == nil || r.s.tax.ID != cfg.ID {
		return domain.ErrNotFound
	}
	history := append(r.s.tax.ChangeHistory, change)
	next := copyTax(cfg)
	next.ChangeHistory = history
	r.s.tax = next
	return nil
}

func copyTax(t *entity.TaxConfig) *entity.TaxConfig {
	if t == nil {
		return nil
	}
	c := *t
	c.ChangeHistory = append([]entity.TaxChange{}, t.ChangeHistory...)
	return &c
}

// UserSettingsRepo preferencias por usuario en memoria.
type UserSettingsRepo struct {
	s *Store
}

func (r *UserSettingsRepo) GetOrCreate(_ context.Context, defaults *entity.UserSettings) (*entity.UserSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.settings[defaults.UserID]
	if !ok {
		cp := *defaults
		cur = &cp
		r.s.settings[defaults.UserID] = cur
	}
	out := *cur
	return &out, nil
}

func (r *UserSettingsRepo) Update(_ context.Context, st *entity.UserSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.settings[st.UserID]; !ok {
		return domain.ErrNotFound
	}
	cp := *st
	cp.UpdatedAt = time.Now().UTC()
	r.s.settings[st.UserID] = &cp
	return nil
}
