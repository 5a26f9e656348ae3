package inventory

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// StockEntry punto del historial de stock derivado de un movimiento.
type StockEntry struct {
	MovementID     string
	EventType      entity.EventType
	Description    string
	UserID         string
	Date           time.Time
	QuantityBefore int
	QuantityAfter  int
	QuantityChange int
}

// StockStats acumulados sobre el historial filtrado.
type StockStats struct {
	TotalAdded     int
	TotalRemoved   int
	ZeroStockCount int
	AverageLevel   float64
	CurrentLevel   int
	Entries        int
}

// BuildStockHistory reduce los movimientos de stock de un producto a ternas
// antes/después/cambio y calcula los acumulados. Los movimientos sin cantidad en
// changes se descartan. Las entradas se devuelven de la más reciente a la más antigua.
func BuildStockHistory(movements []*entity.Movement) ([]StockEntry, StockStats) {
	ordered := chronological(movements)

	entries := make([]StockEntry, 0, len(ordered))
	var stats StockStats
	sum := 0
	for _, m := range ordered {
		if m.Changes == nil {
			continue
		}
		after, ok := AsInt(m.Changes.After[FieldQuantity])
		if !ok {
			continue
		}
		before, ok := AsInt(m.Changes.Before[FieldQuantity])
		if !ok {
			if m.EventType != entity.EventProductCreated {
				continue
			}
			before = 0
		}
		change := after - before
		entries = append(entries, StockEntry{
			MovementID:     m.ID,
			EventType:      m.EventType,
			Description:    m.Description,
			UserID:         m.UserID,
			Date:           m.CreatedAt,
			QuantityBefore: before,
			QuantityAfter:  after,
			QuantityChange: change,
		})
		if change > 0 {
			stats.TotalAdded += change
		} else {
			stats.TotalRemoved -= change
		}
		if after == 0 {
			stats.ZeroStockCount++
		}
		sum += after
		stats.CurrentLevel = after
	}
	stats.Entries = len(entries)
	if len(entries) > 0 {
		stats.AverageLevel = math.Round(float64(sum)/float64(len(entries))*100) / 100
	}
	reverse(entries)
	return entries, stats
}

// Tipos de precio del historial.
const (
	PriceTypeCost    = "cost"
	PriceTypeSelling = "selling"
	PriceTypeAll     = "all"
)

// PriceEntry cambio de un precio de producto.
type PriceEntry struct {
	MovementID    string
	EventType     entity.EventType
	PriceType     string
	Date          time.Time
	Before        *decimal.Decimal // nil en la creación del producto
	After         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
}

// PriceStats acumulados por tipo de precio.
type PriceStats struct {
	Count   int
	Min     decimal.Decimal
	Max     decimal.Decimal
	Current decimal.Decimal
}

// BuildPriceHistory extrae los cambios de costPrice/sellingPrice. priceType vacío o "all"
// incluye ambos. Las entradas se devuelven de la más reciente a la más antigua.
func BuildPriceHistory(movements []*entity.Movement, priceType string) ([]PriceEntry, map[string]PriceStats) {
	ordered := chronological(movements)

	var fields []struct{ key, kind string }
	if priceType == "" || priceType == PriceTypeAll || priceType == PriceTypeCost {
		fields = append(fields, struct{ key, kind string }{FieldCostPrice, PriceTypeCost})
	}
	if priceType == "" || priceType == PriceTypeAll || priceType == PriceTypeSelling {
		fields = append(fields, struct{ key, kind string }{FieldSellingPrice, PriceTypeSelling})
	}

	entries := make([]PriceEntry, 0)
	stats := map[string]PriceStats{}
	for _, m := range ordered {
		if m.Changes == nil {
			continue
		}
		for _, f := range fields {
			after, ok := AsDecimal(m.Changes.After[f.key])
			if !ok {
				continue
			}
			e := PriceEntry{
				MovementID: m.ID,
				EventType:  m.EventType,
				PriceType:  f.kind,
				Date:       m.CreatedAt,
				After:      after,
				Change:     after,
			}
			if before, ok := AsDecimal(m.Changes.Before[f.key]); ok {
				b := before
				e.Before = &b
				e.Change = after.Sub(before)
				if !before.IsZero() {
					e.ChangePercent = e.Change.Div(before).Mul(decimal.NewFromInt(100)).Round(2)
				}
			}
			entries = append(entries, e)

			s := stats[f.kind]
			if s.Count == 0 || after.LessThan(s.Min) {
				s.Min = after
			}
			if s.Count == 0 || after.GreaterThan(s.Max) {
				s.Max = after
			}
			s.Count++
			s.Current = after
			stats[f.kind] = s
		}
	}
	reverse(entries)
	return entries, stats
}

func chronological(movements []*entity.Movement) []*entity.Movement {
	out := make([]*entity.Movement, 0, len(movements))
	for _, m := range movements {
		if m != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
