package inventory

import (
	"context"
	"fmt"
	"sort"
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

// PurchaseUseCase ciclo de vida de compras y su efecto sobre el stock.
type PurchaseUseCase struct {
	txRunner     TxRunner
	purchaseRepo repository.PurchaseRepository
	movements    MovementRecorder
	pdf          PurchasePDFGenerator
	now          func() time.Time
}

// NewPurchaseUseCase construye el caso de uso. pdf puede ser nil si no se expone el comprobante.
func NewPurchaseUseCase(
	txRunner TxRunner,
	purchaseRepo repository.PurchaseRepository,
	movements MovementRecorder,
	pdf PurchasePDFGenerator,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		txRunner:     txRunner,
		purchaseRepo: purchaseRepo,
		movements:    movements,
		pdf:          pdf,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// stockDelta cambio de cantidad aplicado a un producto dentro de una operación.
type stockDelta struct {
	product *entity.Product
	before  int
	qty     int
	clamped bool
}

// Create registra la compra y suma cada línea al stock del producto, todo en una transacción:
// si falta cualquier producto no se aplica nada. El precio unitario se congela desde el
// costo actual del producto.
func (uc *PurchaseUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "la compra debe tener al menos un ítem")
	}
	if !in.TotalAmount.GreaterThan(decimal.Zero) {
		return nil, domain.Invalid("totalAmount", "debe ser mayor a 0")
	}
	qtyByProduct := map[string]int{}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].productId", i), "es requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor a 0")
		}
		qtyByProduct[it.ProductID] += it.Quantity
	}
	status := in.Status
	if status == "" {
		status = entity.PurchaseStatusCompleted
	}

	now := uc.now()
	purchaseDate := now
	if in.PurchaseDate != nil {
		purchaseDate = in.PurchaseDate.UTC()
	}
	purchase := &entity.Purchase{
		ID:             uuid.New().String(),
		PurchaseNumber: newPurchaseNumber(now),
		UserID:         actor.UserID,
		TotalAmount:    in.TotalAmount,
		Status:         status,
		Supplier:       strings.TrimSpace(in.Supplier),
		PaymentMethod:  strings.TrimSpace(in.PaymentMethod),
		Notes:          in.Notes,
		PurchaseDate:   purchaseDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var deltas []*stockDelta
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, purchaseRepo repository.PurchaseRepository) error {
		deltas = deltas[:0]
		locked := map[string]*stockDelta{}
		// Orden fijo de bloqueo para no cruzarse con otra transacción sobre los mismos productos.
		for _, id := range sortedKeys(qtyByProduct) {
			p, err := productRepo.GetForUpdate(ctx, id, actor.OwnerScope())
			if err != nil {
				return fmt.Errorf("compra: obtener producto: %w", err)
			}
			if p == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
			}
			d := &stockDelta{product: p, before: p.Quantity, qty: qtyByProduct[id]}
			locked[id] = d
			deltas = append(deltas, d)
		}

		purchase.Items = make([]entity.PurchaseItem, 0, len(in.Items))
		for _, it := range in.Items {
			p := locked[it.ProductID].product
			purchase.Items = append(purchase.Items, entity.PurchaseItem{
				ID:          uuid.New().String(),
				PurchaseID:  purchase.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				SKU:         p.SKU,
				Quantity:    it.Quantity,
				UnitPrice:   p.CostPrice,
				Subtotal:    inventory.LineSubtotal(it.Quantity, p.CostPrice),
			})
		}

		for _, d := range deltas {
			d.product.Quantity = inventory.IncreaseStock(d.before, d.qty)
			if err := productRepo.SetQuantity(ctx, d.product.ID, d.product.Quantity); err != nil {
				return fmt.Errorf("compra: actualizar stock: %w", err)
			}
		}
		if err := purchaseRepo.Create(ctx, purchase); err != nil {
			return fmt.Errorf("compra: guardar: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventPurchaseCreated,
		Description: fmt.Sprintf("Compra %s registrada con %d ítem(s) por %s", purchase.PurchaseNumber, len(purchase.Items), purchase.TotalAmount.StringFixed(2)),
		Actor:       actor,
		PurchaseID:  purchase.ID,
		Metadata: map[string]any{
			"purchaseNumber": purchase.PurchaseNumber,
			"itemCount":      len(purchase.Items),
			"totalAmount":    purchase.TotalAmount.String(),
			"supplier":       purchase.Supplier,
		},
		Changes: inventory.Snapshot(nil, inventory.PurchaseFields(purchase)),
	})
	for _, d := range deltas {
		uc.movements.Record(ctx, audit.Entry{
			EventType:   entity.EventStockChanged,
			Description: fmt.Sprintf("Stock de %s: %d → %d por compra %s", d.product.Name, d.before, d.product.Quantity, purchase.PurchaseNumber),
			Actor:       actor,
			ProductID:   d.product.ID,
			PurchaseID:  purchase.ID,
			Metadata: map[string]any{
				"reason":         string(entity.EventPurchaseCreated),
				"purchaseNumber": purchase.PurchaseNumber,
				"quantityAdded":  d.qty,
			},
			Changes: inventory.Diff(inventory.QuantityFields(d.before), inventory.QuantityFields(d.product.Quantity)),
		})
	}
	return toPurchaseResponse(purchase), nil
}

// Delete elimina la compra y revierte su efecto en el stock con piso en cero.
// Cuando el stock actual no alcanza para revertir la línea completa, el producto queda en
// cero y se devuelve un warning por cada producto afectado.
func (uc *PurchaseUseCase) Delete(ctx context.Context, actor entity.Actor, id string) (*dto.DeletePurchaseResponse, error) {
	var (
		purchase *entity.Purchase
		deltas   []*stockDelta
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, purchaseRepo repository.PurchaseRepository) error {
		deltas = deltas[:0]
		var err error
		purchase, err = purchaseRepo.GetByID(ctx, id, actor.OwnerScope())
		if err != nil {
			return fmt.Errorf("compra: obtener: %w", err)
		}
		if purchase == nil {
			return domain.ErrNotFound
		}

		qtyByProduct := map[string]int{}
		for _, it := range purchase.Items {
			if it.ProductID != "" {
				qtyByProduct[it.ProductID] += it.Quantity
			}
		}
		for _, pid := range sortedKeys(qtyByProduct) {
			p, err := productRepo.GetForUpdate(ctx, pid, "")
			if err != nil {
				return fmt.Errorf("compra: obtener producto: %w", err)
			}
			if p == nil {
				continue
			}
			d := &stockDelta{product: p, before: p.Quantity, qty: qtyByProduct[pid]}
			p.Quantity, d.clamped = inventory.DecreaseStock(d.before, d.qty)
			if err := productRepo.SetQuantity(ctx, p.ID, p.Quantity); err != nil {
				return fmt.Errorf("compra: actualizar stock: %w", err)
			}
			deltas = append(deltas, d)
		}
		if err := purchaseRepo.Delete(ctx, purchase.ID); err != nil {
			return fmt.Errorf("compra: eliminar: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &dto.DeletePurchaseResponse{ID: purchase.ID, Warnings: []dto.StockWarning{}}
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventPurchaseDeleted,
		Description: fmt.Sprintf("Compra %s eliminada", purchase.PurchaseNumber),
		Actor:       actor,
		Metadata: map[string]any{
			"purchaseId":     purchase.ID,
			"purchaseNumber": purchase.PurchaseNumber,
			"itemCount":      len(purchase.Items),
		},
		Changes: inventory.Snapshot(inventory.PurchaseFields(purchase), nil),
	})
	for _, d := range deltas {
		meta := map[string]any{
			"reason":           string(entity.EventPurchaseDeleted),
			"purchaseNumber":   purchase.PurchaseNumber,
			"quantityRemoved":  d.before - d.product.Quantity,
			"quantityExpected": d.qty,
		}
		if d.clamped {
			meta["clamped"] = true
			out.Warnings = append(out.Warnings, dto.StockWarning{
				ProductID:   d.product.ID,
				ProductName: d.product.Name,
				Requested:   d.qty,
				Available:   d.before,
				Message: fmt.Sprintf("el stock de %s (%d) no alcanzaba para revertir %d unidades; quedó en 0",
					d.product.Name, d.before, d.qty),
			})
		}
		uc.movements.Record(ctx, audit.Entry{
			EventType:   entity.EventStockChanged,
			Description: fmt.Sprintf("Stock de %s: %d → %d por eliminación de compra %s", d.product.Name, d.before, d.product.Quantity, purchase.PurchaseNumber),
			Actor:       actor,
			ProductID:   d.product.ID,
			Metadata:    meta,
			Changes:     inventory.Diff(inventory.QuantityFields(d.before), inventory.QuantityFields(d.product.Quantity)),
		})
	}
	return out, nil
}

// Update edita los campos de cabecera. Las líneas y el total no cambian: el stock ya se aplicó.
func (uc *PurchaseUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	before := inventory.PurchaseFields(purchase)
	if in.Status != nil {
		purchase.Status = *in.Status
	}
	if in.Supplier != nil {
		purchase.Supplier = strings.TrimSpace(*in.Supplier)
	}
	if in.PaymentMethod != nil {
		purchase.PaymentMethod = strings.TrimSpace(*in.PaymentMethod)
	}
	if in.Notes != nil {
		purchase.Notes = *in.Notes
	}
	if in.PurchaseDate != nil {
		purchase.PurchaseDate = in.PurchaseDate.UTC()
	}
	changes := inventory.Diff(before, inventory.PurchaseFields(purchase))
	if changes == nil {
		return toPurchaseResponse(purchase), nil
	}
	purchase.UpdatedAt = uc.now()
	if err := uc.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, err
	}
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventPurchaseUpdated,
		Description: fmt.Sprintf("Compra %s actualizada", purchase.PurchaseNumber),
		Actor:       actor,
		PurchaseID:  purchase.ID,
		Metadata:    map[string]any{"purchaseNumber": purchase.PurchaseNumber},
		Changes:     changes,
	})
	return toPurchaseResponse(purchase), nil
}

// GetByID obtiene una compra visible para el actor.
func (uc *PurchaseUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.PurchaseResponse, error) {
	p, err := uc.purchaseRepo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPurchaseResponse(p), nil
}

// List lista compras del actor (todas para admin), más recientes primero.
func (uc *PurchaseUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.PurchaseListResponse, error) {
	page.DefaultPage()
	list, err := uc.purchaseRepo.List(ctx, actor.OwnerScope(), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPurchaseResponse(p))
	}
	return &dto.PurchaseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// PDF genera el comprobante de la compra.
func (uc *PurchaseUseCase) PDF(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("compra: generador PDF no configurado")
	}
	p, err := uc.purchaseRepo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, "", err
	}
	if p == nil {
		return nil, "", domain.ErrNotFound
	}
	b, err := uc.pdf.Generate(p)
	if err != nil {
		return nil, "", fmt.Errorf("compra: generar pdf: %w", err)
	}
	return b, fmt.Sprintf("compra-%s.pdf", p.PurchaseNumber), nil
}

func newPurchaseNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PO-%s-%s", now.Format("20060102"), suffix)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toPurchaseResponse(p *entity.Purchase) *dto.PurchaseResponse {
	items := make([]dto.PurchaseItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, dto.PurchaseItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return &dto.PurchaseResponse{
		ID:             p.ID,
		PurchaseNumber: p.PurchaseNumber,
		UserID:         p.UserID,
		Items:          items,
		TotalAmount:    p.TotalAmount,
		Status:         p.Status,
		Supplier:       p.Supplier,
		PaymentMethod:  p.PaymentMethod,
		Notes:          p.Notes,
		PurchaseDate:   p.PurchaseDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
