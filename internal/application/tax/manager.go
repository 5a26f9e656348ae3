// Package tax administra la configuración global de impuestos: un único registro
// is_global creado con valores por defecto en la primera lectura, con historial permanente.
package tax

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// MovementRecorder puerto hacia el Movement Logger.
type MovementRecorder interface {
	Record(ctx context.Context, e audit.Entry) *entity.Movement
}

// Manager Tax Configuration Manager.
type Manager struct {
	repo      repository.TaxConfigRepository
	movements MovementRecorder
	now       func() time.Time
}

// NewManager construye el manager.
func NewManager(repo repository.TaxConfigRepository, movements MovementRecorder) *Manager {
	return &Manager{repo: repo, movements: movements, now: func() time.Time { return time.Now().UTC() }}
}

// Get devuelve la configuración global; la crea con valores por defecto si no existe.
func (m *Manager) Get(ctx context.Context) (*dto.TaxConfigResponse, error) {
	cfg, _, err := m.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return toResponse(cfg), nil
}

// Upsert aplica un merge sobre el singleton (creándolo si falta) y agrega una entrada
// al historial con actor, fecha, valores antes/después y descripción.
func (m *Manager) Upsert(ctx context.Context, actor entity.Actor, in dto.UpdateTaxRequest) (*dto.TaxConfigResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validateRate("gst.rate", in.GST); err != nil {
		return nil, err
	}
	if err := validateRate("platformFee.rate", in.PlatformFee); err != nil {
		return nil, err
	}
	cfg, created, err := m.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	before := inventory.TaxFields(cfg)
	applyRate(&cfg.GST, in.GST)
	applyRate(&cfg.PlatformFee, in.PlatformFee)
	if in.Status != nil {
		cfg.Status = *in.Status
	}
	after := inventory.TaxFields(cfg)

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = "Actualización de configuración de impuestos"
	}
	now := m.now()
	cfg.UpdatedBy = actorLabel(actor)
	cfg.UpdatedAt = now
	change := entity.TaxChange{ChangedBy: cfg.UpdatedBy, ChangedAt: now, Description: desc, Before: before, After: after}
	if err := m.repo.Save(ctx, cfg, change); err != nil {
		return nil, fmt.Errorf("tax: guardar: %w", err)
	}

	eventType := entity.EventTaxUpdated
	changes := inventory.Diff(before, after)
	if created {
		eventType = entity.EventTaxCreated
		changes = inventory.Snapshot(nil, after)
	}
	m.movements.Record(ctx, audit.Entry{
		EventType:   eventType,
		Description: desc,
		Actor:       actor,
		Metadata:    map[string]any{"taxConfigId": cfg.ID},
		Changes:     changes,
	})
	return toResponse(cfg), nil
}

// Delete borrado lógico: el estado pasa a inactive; el registro y su historial se conservan.
func (m *Manager) Delete(ctx context.Context, actor entity.Actor) (*dto.TaxConfigResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	cfg, err := m.repo.GetGlobal(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrNotFound
	}
	before := inventory.TaxFields(cfg)
	now := m.now()
	cfg.Status = entity.TaxStatusInactive
	cfg.UpdatedBy = actorLabel(actor)
	cfg.UpdatedAt = now
	after := inventory.TaxFields(cfg)
	change := entity.TaxChange{ChangedBy: cfg.UpdatedBy, ChangedAt: now, Description: "Configuración desactivada", Before: before, After: after}
	if err := m.repo.Save(ctx, cfg, change); err != nil {
		return nil, fmt.Errorf("tax: desactivar: %w", err)
	}
	m.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventTaxDeleted,
		Description: "Configuración de impuestos desactivada",
		Actor:       actor,
		Metadata:    map[string]any{"taxConfigId": cfg.ID},
		Changes:     inventory.Diff(before, after),
	})
	return toResponse(cfg), nil
}

// History historial completo, del más antiguo al más reciente.
func (m *Manager) History(ctx context.Context) (*dto.TaxHistoryResponse, error) {
	cfg, _, err := m.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.TaxHistoryResponse{ConfigID: cfg.ID, History: cfg.ChangeHistory}, nil
}

func (m *Manager) getOrCreate(ctx context.Context) (*entity.TaxConfig, bool, error) {
	cfg, err := m.repo.GetGlobal(ctx)
	if err != nil {
		return nil, false, err
	}
	if cfg != nil {
		return cfg, false, nil
	}
	def := entity.DefaultTaxConfig(uuid.New().String(), m.now())
	cfg, err = m.repo.CreateGlobal(ctx, def)
	if err != nil {
		return nil, false, err
	}
	// otra request pudo crearla primero; solo cuenta como creada si es la nuestra
	return cfg, cfg.ID == def.ID, nil
}

var hundred = decimal.NewFromInt(100)

func validateRate(field string, p *dto.TaxRatePatch) error {
	if p == nil || p.Rate == nil {
		return nil
	}
	if p.Rate.IsNegative() || p.Rate.GreaterThan(hundred) {
		return domain.Invalid(field, "debe estar entre 0 y 100")
	}
	return nil
}

func applyRate(dst *entity.TaxRate, p *dto.TaxRatePatch) {
	if p == nil {
		return
	}
	if p.Enabled != nil {
		dst.Enabled = *p.Enabled
	}
	if p.Rate != nil {
		dst.Rate = *p.Rate
	}
}

func actorLabel(a entity.Actor) string {
	if a.Email != "" {
		return a.Email
	}
	return a.UserID
}

func toResponse(c *entity.TaxConfig) *dto.TaxConfigResponse {
	return &dto.TaxConfigResponse{
		ID:          c.ID,
		IsGlobal:    c.IsGlobal,
		GST:         c.GST,
		PlatformFee: c.PlatformFee,
		Status:      c.Status,
		UpdatedBy:   c.UpdatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
