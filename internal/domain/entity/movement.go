package entity

import "time"

// EventType vocabulario fijo de eventos auditados.
type EventType string

const (
	EventProductCreated  EventType = "product.created"
	EventProductUpdated  EventType = "product.updated"
	EventProductDeleted  EventType = "product.deleted"
	EventPurchaseCreated EventType = "purchase.created"
	EventPurchaseUpdated EventType = "purchase.updated"
	EventPurchaseDeleted EventType = "purchase.deleted"
	EventStockRefill     EventType = "stock.refill"
	EventStockChanged    EventType = "stock.changed"
	EventUserUpdated     EventType = "user.updated"
	EventUserDeleted     EventType = "user.deleted"
	EventTaxCreated      EventType = "tax.created"
	EventTaxUpdated      EventType = "tax.updated"
	EventTaxDeleted      EventType = "tax.deleted"
)

var eventTypes = map[EventType]struct{}{
	EventProductCreated: {}, EventProductUpdated: {}, EventProductDeleted: {},
	EventPurchaseCreated: {}, EventPurchaseUpdated: {}, EventPurchaseDeleted: {},
	EventStockRefill: {}, EventStockChanged: {},
	EventUserUpdated: {}, EventUserDeleted: {},
	EventTaxCreated: {}, EventTaxUpdated: {}, EventTaxDeleted: {},
}

// Valid indica si el tipo pertenece al vocabulario.
func (e EventType) Valid() bool {
	_, ok := eventTypes[e]
	return ok
}

// StockEventTypes eventos que pueden alterar la cantidad de un producto.
var StockEventTypes = []EventType{
	EventProductCreated, EventProductUpdated, EventStockRefill, EventStockChanged,
}

// PriceEventTypes eventos que pueden alterar los precios de un producto.
var PriceEventTypes = []EventType{EventProductCreated, EventProductUpdated}

// FieldSet conjunto de campos de una instantánea. Las claves dependen del EventType
// (ver ProductFields, PurchaseFields, TaxFields, UserFields); los valores son escalares JSON.
type FieldSet map[string]any

// Changes instantáneas antes/después, solo con los campos que cambiaron.
type Changes struct {
	Before FieldSet `json:"before,omitempty"`
	After  FieldSet `json:"after,omitempty"`
}

// Empty indica si no hay cambios registrados.
func (c *Changes) Empty() bool {
	return c == nil || (len(c.Before) == 0 && len(c.After) == 0)
}

// Movement registro append-only de un evento que cambió estado.
// Solo Title, Description y Metadata admiten corrección posterior.
type Movement struct {
	ID          string
	EventType   EventType
	Title       string
	Description string
	UserID      string
	UserEmail   string
	ProductID   string
	PurchaseID  string
	CategoryID  string
	Metadata    map[string]any
	Changes     *Changes
	CreatedAt   time.Time

	// Referencias ligeras pobladas en lectura.
	ProductName    string
	ProductSKU     string
	PurchaseNumber string
	CategoryName   string
}

// MovementFilter criterios de consulta de movimientos.
type MovementFilter struct {
	EventTypes []EventType
	UserID     string
	ProductID  string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
}

// MovementPatch corrección cosmética de un movimiento (lista permitida).
type MovementPatch struct {
	Title       *string
	Description *string
	Metadata    map[string]any
}
