// Package audit registra y consulta los movimientos auditados.
// Registrar es best-effort: una falla se reporta al log del operador y nunca
// revierte ni hace fallar la mutación que la originó.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

// Publisher difunde un movimiento ya persistido (feed en vivo).
type Publisher interface {
	Publish(m *entity.Movement)
}

// Entry datos de un movimiento a registrar.
type Entry struct {
	EventType   entity.EventType
	Title       string // vacío = título por defecto del tipo
	Description string
	Actor       entity.Actor
	ProductID   string
	PurchaseID  string
	CategoryID  string
	Metadata    map[string]any
	Changes     *entity.Changes
}

var defaultTitles = map[entity.EventType]string{
	entity.EventProductCreated:  "Producto creado",
	entity.EventProductUpdated:  "Producto actualizado",
	entity.EventProductDeleted:  "Producto eliminado",
	entity.EventPurchaseCreated: "Compra registrada",
	entity.EventPurchaseUpdated: "Compra actualizada",
	entity.EventPurchaseDeleted: "Compra eliminada",
	entity.EventStockRefill:     "Recarga de stock",
	entity.EventStockChanged:    "Cambio de stock",
	entity.EventUserUpdated:     "Usuario actualizado",
	entity.EventUserDeleted:     "Usuario eliminado",
	entity.EventTaxCreated:      "Impuestos configurados",
	entity.EventTaxUpdated:      "Impuestos actualizados",
	entity.EventTaxDeleted:      "Impuestos desactivados",
}

// Logger Movement Logger: append-only sobre MovementRepository.
type Logger struct {
	repo      repository.MovementRepository
	publisher Publisher
	log       *logger.Logger
	now       func() time.Time
}

// NewLogger construye el logger de movimientos. publisher puede ser nil.
func NewLogger(repo repository.MovementRepository, publisher Publisher, log *logger.Logger) *Logger {
	if log == nil {
		log = logger.Nop()
	}
	return &Logger{
		repo:      repo,
		publisher: publisher,
		log:       log.Component("movements"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record agrega un movimiento. Nunca devuelve error: las fallas van al log.
// Devuelve el movimiento persistido o nil si no se pudo registrar.
func (l *Logger) Record(ctx context.Context, e Entry) *entity.Movement {
	if !e.EventType.Valid() {
		l.log.Error().Str("event_type", string(e.EventType)).Msg("tipo de evento desconocido, movimiento descartado")
		return nil
	}
	title := e.Title
	if title == "" {
		title = defaultTitles[e.EventType]
	}
	m := &entity.Movement{
		ID:          uuid.New().String(),
		EventType:   e.EventType,
		Title:       title,
		Description: e.Description,
		UserID:      e.Actor.UserID,
		UserEmail:   e.Actor.Email,
		ProductID:   e.ProductID,
		PurchaseID:  e.PurchaseID,
		CategoryID:  e.CategoryID,
		Metadata:    e.Metadata,
		CreatedAt:   l.now(),
	}
	if !e.Changes.Empty() {
		m.Changes = e.Changes
	}

	// El movimiento no debe perderse si el request se cancela justo después de la mutación.
	if err := l.repo.Create(context.WithoutCancel(ctx), m); err != nil {
		l.log.Error().Err(err).
			Str("event_type", string(m.EventType)).
			Str("user_id", m.UserID).
			Str("product_id", m.ProductID).
			Str("purchase_id", m.PurchaseID).
			Msg("no se pudo registrar el movimiento")
		return nil
	}
	if l.publisher != nil {
		l.publisher.Publish(m)
	}
	return m
}
