package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// StockUseCase recargas de stock e historiales derivados de los movimientos.
type StockUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movements   MovementRecorder
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, productRepo repository.ProductRepository, movements MovementRecorder) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, productRepo: productRepo, movements: movements}
}

// Refill suma unidades a un producto fuera del flujo de compras.
func (uc *StockUseCase) Refill(ctx context.Context, actor entity.Actor, productID string, in dto.RefillRequest) (*entity.Product, error) {
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "debe ser mayor a 0")
	}
	var (
		product *entity.Product
		before  int
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, _ repository.PurchaseRepository) error {
		var err error
		product, err = productRepo.GetForUpdate(ctx, productID, actor.OwnerScope())
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		before = product.Quantity
		product.Quantity = inventory.IncreaseStock(before, in.Quantity)
		return productRepo.SetQuantity(ctx, product.ID, product.Quantity)
	})
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Recarga de %d unidades de %s: %d → %d", in.Quantity, product.Name, before, product.Quantity)
	if note := strings.TrimSpace(in.Note); note != "" {
		desc += " (" + note + ")"
	}
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventStockRefill,
		Description: desc,
		Actor:       actor,
		ProductID:   product.ID,
		CategoryID:  product.CategoryID,
		Metadata:    map[string]any{"quantityAdded": in.Quantity, "note": in.Note},
		Changes:     inventory.Diff(inventory.QuantityFields(before), inventory.QuantityFields(product.Quantity)),
	})
	return product, nil
}

// StockHistory historial de cantidades de un producto. Un producto que no es del actor
// (salvo admin) responde not found.
func (uc *StockUseCase) StockHistory(ctx context.Context, actor entity.Actor, productID string, q dto.HistoryQuery) (*dto.StockHistoryResponse, error) {
	product, filter, err := uc.historyScope(ctx, actor, productID, q, entity.StockEventTypes)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movements.Movements(ctx, filter)
	if err != nil {
		return nil, err
	}
	entries, stats := inventory.BuildStockHistory(movs)

	history := make([]dto.StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		history = append(history, dto.StockEntryResponse{
			MovementID:     e.MovementID,
			EventType:      e.EventType,
			Description:    e.Description,
			UserID:         e.UserID,
			Date:           e.Date,
			QuantityBefore: e.QuantityBefore,
			QuantityAfter:  e.QuantityAfter,
			QuantityChange: e.QuantityChange,
		})
	}
	return &dto.StockHistoryResponse{
		ProductID:       product.ID,
		ProductName:     product.Name,
		SKU:             product.SKU,
		CurrentQuantity: product.Quantity,
		History:         history,
		Stats: dto.StockStatsResponse{
			TotalAdded:     stats.TotalAdded,
			TotalRemoved:   stats.TotalRemoved,
			ZeroStockCount: stats.ZeroStockCount,
			AverageLevel:   stats.AverageLevel,
			CurrentLevel:   stats.CurrentLevel,
			Entries:        stats.Entries,
		},
	}, nil
}

// PriceHistory historial de costo y/o precio de venta de un producto.
func (uc *StockUseCase) PriceHistory(ctx context.Context, actor entity.Actor, productID string, q dto.HistoryQuery) (*dto.PriceHistoryResponse, error) {
	switch q.PriceType {
	case "", inventory.PriceTypeAll, inventory.PriceTypeCost, inventory.PriceTypeSelling:
	default:
		return nil, domain.Invalid("priceType", "debe ser uno de: cost selling all")
	}
	product, filter, err := uc.historyScope(ctx, actor, productID, q, entity.PriceEventTypes)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movements.Movements(ctx, filter)
	if err != nil {
		return nil, err
	}
	entries, stats := inventory.BuildPriceHistory(movs, q.PriceType)

	history := make([]dto.PriceEntryResponse, 0, len(entries))
	for _, e := range entries {
		history = append(history, dto.PriceEntryResponse{
			MovementID:    e.MovementID,
			EventType:     e.EventType,
			PriceType:     e.PriceType,
			Date:          e.Date,
			Before:        e.Before,
			After:         e.After,
			Change:        e.Change,
			ChangePercent: e.ChangePercent,
		})
	}
	out := make(map[string]dto.PriceStatsResponse, len(stats))
	for k, s := range stats {
		out[k] = dto.PriceStatsResponse{Count: s.Count, Min: s.Min, Max: s.Max, Current: s.Current}
	}
	return &dto.PriceHistoryResponse{
		ProductID:           product.ID,
		ProductName:         product.Name,
		SKU:                 product.SKU,
		CurrentCostPrice:    product.CostPrice,
		CurrentSellingPrice: product.SellingPrice,
		History:             history,
		Stats:               out,
	}, nil
}

func (uc *StockUseCase) historyScope(
	ctx context.Context,
	actor entity.Actor,
	productID string,
	q dto.HistoryQuery,
	types []entity.EventType,
) (*entity.Product, entity.MovementFilter, error) {
	var f entity.MovementFilter
	product, err := uc.productRepo.GetByID(ctx, productID, actor.OwnerScope())
	if err != nil {
		return nil, f, err
	}
	if product == nil {
		return nil, f, domain.ErrNotFound
	}
	f = entity.MovementFilter{EventTypes: types, ProductID: product.ID, Limit: q.Limit}
	if f.DateFrom, err = audit.ParseDate("startDate", q.StartDate, false); err != nil {
		return nil, f, err
	}
	if f.DateTo, err = audit.ParseDate("endDate", q.EndDate, true); err != nil {
		return nil, f, err
	}
	if f.Limit <= 0 || f.Limit > audit.MaxLimit {
		f.Limit = audit.MaxLimit
	}
	return product, f, nil
}
