package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// Límites de consulta.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// CorrectableFields campos que admite la ruta de corrección.
var CorrectableFields = map[string]struct{}{
	"title":       {},
	"description": {},
	"metadata":    {},
}

// ParseQuery convierte los parámetros HTTP en un filtro. userId solo lo respeta para admin;
// un usuario normal siempre queda limitado a sus propios movimientos.
func ParseQuery(actor entity.Actor, q dto.MovementQuery) (entity.MovementFilter, error) {
	f := entity.MovementFilter{ProductID: q.ProductID, Limit: q.Limit}
	if err := checkUUID("userId", q.UserID); err != nil {
		return f, err
	}
	if err := checkUUID("productId", q.ProductID); err != nil {
		return f, err
	}
	if actor.IsAdmin() {
		f.UserID = q.UserID
	} else {
		f.UserID = actor.UserID
	}
	if q.EventType != "" {
		for _, raw := range strings.Split(q.EventType, ",") {
			et := entity.EventType(strings.TrimSpace(raw))
			if et == "" {
				continue
			}
			if !et.Valid() {
				return f, domain.Invalid("eventType", fmt.Sprintf("tipo de evento desconocido %q", et))
			}
			f.EventTypes = append(f.EventTypes, et)
		}
	}
	var err error
	if f.DateFrom, err = ParseDate("dateFrom", q.DateFrom, false); err != nil {
		return f, err
	}
	if f.DateTo, err = ParseDate("dateTo", q.DateTo, true); err != nil {
		return f, err
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, domain.Invalid("dateTo", "debe ser posterior a dateFrom")
	}
	f.Limit = clampLimit(f.Limit)
	return f, nil
}

// checkUUID vacío es válido: el filtro no se aplica.
func checkUUID(field, s string) error {
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return domain.Invalid(field, "debe ser un UUID")
	}
	return nil
}

// ParseDate acepta RFC3339 o YYYY-MM-DD. Con endOfDay una fecha sin hora cubre el día completo.
func ParseDate(field, s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, domain.Invalid(field, "fecha inválida, use YYYY-MM-DD o RFC3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// List movimientos visibles para el actor, del más reciente al más antiguo.
func (l *Logger) List(ctx context.Context, f entity.MovementFilter) ([]dto.MovementResponse, error) {
	list, err := l.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, *ToMovementResponse(m))
	}
	return out, nil
}

// Movements acceso crudo para las vistas derivadas (historiales).
func (l *Logger) Movements(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	return l.repo.List(ctx, f)
}

// Get un movimiento visible para el actor.
func (l *Logger) Get(ctx context.Context, actor entity.Actor, id string) (*dto.MovementResponse, error) {
	m, err := l.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return ToMovementResponse(m), nil
}

// Correct corrección cosmética (solo admin). fields son las claves recibidas en el body:
// cualquiera fuera de title, description y metadata se rechaza.
func (l *Logger) Correct(ctx context.Context, actor entity.Actor, id string, fields []string, patch entity.MovementPatch) (*dto.MovementResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if len(fields) == 0 {
		return nil, domain.Invalid("", "no hay campos para corregir")
	}
	for _, f := range fields {
		if _, ok := CorrectableFields[f]; !ok {
			return nil, domain.Invalid(f, "campo no corregible; solo title, description y metadata")
		}
	}
	cur, err := l.repo.GetByID(ctx, id, "")
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	if err := l.repo.Correct(ctx, id, patch); err != nil {
		return nil, err
	}
	l.log.Info().Str("movement_id", id).Str("admin", actor.Email).Strs("fields", fields).Msg("movimiento corregido")
	return l.Get(ctx, actor, id)
}

// ToMovementResponse mapea un movimiento con sus referencias ligeras.
func ToMovementResponse(m *entity.Movement) *dto.MovementResponse {
	out := &dto.MovementResponse{
		ID:          m.ID,
		EventType:   m.EventType,
		Title:       m.Title,
		Description: m.Description,
		UserID:      m.UserID,
		UserEmail:   m.UserEmail,
		Metadata:    m.Metadata,
		Changes:     m.Changes,
		CreatedAt:   m.CreatedAt,
	}
	if m.ProductID != "" {
		out.Product = &dto.RefResponse{ID: m.ProductID, Name: m.ProductName, SKU: m.ProductSKU}
	}
	if m.PurchaseID != "" {
		out.Purchase = &dto.RefResponse{ID: m.PurchaseID, Number: m.PurchaseNumber}
	}
	if m.CategoryID != "" {
		out.Category = &dto.RefResponse{ID: m.CategoryID, Name: m.CategoryName}
	}
	return out
}
