package inventory

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// Claves de instantánea de producto.
const (
	FieldName         = "name"
	FieldSKU          = "sku"
	FieldQuantity     = "quantity"
	FieldCostPrice    = "costPrice"
	FieldSellingPrice = "sellingPrice"
)

// ProductFields subconjunto auditado de un producto.
func ProductFields(p *entity.Product) entity.FieldSet {
	return entity.FieldSet{
		FieldName:         p.Name,
		FieldSKU:          p.SKU,
		FieldQuantity:     p.Quantity,
		FieldCostPrice:    p.CostPrice,
		FieldSellingPrice: p.SellingPrice,
	}
}

// QuantityFields instantánea mínima para eventos de stock.
func QuantityFields(q int) entity.FieldSet {
	return entity.FieldSet{FieldQuantity: q}
}

// PurchaseFields subconjunto auditado de una compra (campos editables + total).
func PurchaseFields(p *entity.Purchase) entity.FieldSet {
	return entity.FieldSet{
		"status":        p.Status,
		"supplier":      p.Supplier,
		"paymentMethod": p.PaymentMethod,
		"notes":         p.Notes,
		"totalAmount":   p.TotalAmount,
		"purchaseDate":  p.PurchaseDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// TaxFields subconjunto auditado de la configuración de impuestos.
func TaxFields(t *entity.TaxConfig) entity.FieldSet {
	return entity.FieldSet{
		"gstEnabled":         t.GST.Enabled,
		"gstRate":            t.GST.Rate,
		"platformFeeEnabled": t.PlatformFee.Enabled,
		"platformFeeRate":    t.PlatformFee.Rate,
		"status":             t.Status,
	}
}

// UserFields subconjunto auditado de un usuario (nunca el hash).
func UserFields(u *entity.User) entity.FieldSet {
	return entity.FieldSet{
		"name":   u.Name,
		"email":  u.Email,
		"role":   u.Role,
		"status": u.Status,
	}
}

// Diff devuelve solo los campos que cambiaron entre before y after. nil si no hay cambios.
func Diff(before, after entity.FieldSet) *entity.Changes {
	ch := &entity.Changes{Before: entity.FieldSet{}, After: entity.FieldSet{}}
	for k, nv := range after {
		ov, ok := before[k]
		if !ok {
			ch.After[k] = nv
			continue
		}
		if !valuesEqual(ov, nv) {
			ch.Before[k] = ov
			ch.After[k] = nv
		}
	}
	for k, ov := range before {
		if _, ok := after[k]; !ok {
			ch.Before[k] = ov
		}
	}
	if ch.Empty() {
		return nil
	}
	return ch
}

// Snapshot instantánea de alta o baja: solo after (creación) o solo before (borrado).
func Snapshot(before, after entity.FieldSet) *entity.Changes {
	if len(before) == 0 && len(after) == 0 {
		return nil
	}
	return &entity.Changes{Before: before, After: after}
}

func valuesEqual(a, b any) bool {
	if da, ok := AsDecimal(a); ok {
		if db, ok := AsDecimal(b); ok {
			_, aIsStr := a.(string)
			_, bIsStr := b.(string)
			// dos strings no numéricos se comparan como texto más abajo
			if !(aIsStr && bIsStr) {
				return da.Equal(db)
			}
		}
	}
	return reflect.DeepEqual(a, b)
}

// AsInt interpreta un valor de instantánea como entero (int en memoria, float64/json.Number tras JSON).
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

// AsDecimal interpreta un valor de instantánea como decimal (decimal.Decimal en memoria, string tras JSON).
func AsDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case fmt.Stringer:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	}
	return decimal.Zero, false
}
