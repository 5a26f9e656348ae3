package usecase

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

const recentMovements = 10

// StatsUseCase Statistics Aggregator: conteos y agrupaciones de solo lectura.
type StatsUseCase struct {
	repo      repository.StatsRepository
	movements repository.MovementRepository
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(repo repository.StatsRepository, movements repository.MovementRepository) *StatsUseCase {
	return &StatsUseCase{repo: repo, movements: movements}
}

// ForUser estadísticas del inventario propio del actor.
func (uc *StatsUseCase) ForUser(ctx context.Context, actor entity.Actor) (*dto.StatsResponse, error) {
	return uc.scope(ctx, actor.UserID)
}

// Global estadísticas de todo el sistema (solo admin).
func (uc *StatsUseCase) Global(ctx context.Context, actor entity.Actor) (*dto.AdminStatsResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := uc.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	s, err := uc.scope(ctx, "")
	if err != nil {
		return nil, err
	}
	return &dto.AdminStatsResponse{TotalUsers: users, StatsResponse: *s}, nil
}

func (uc *StatsUseCase) scope(ctx context.Context, ownerID string) (*dto.StatsResponse, error) {
	t, err := uc.repo.Totals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byCategory, err := uc.repo.ProductsByCategory(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byStatus, err := uc.repo.PurchasesByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byType, err := uc.repo.MovementsByEventType(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	recent, err := uc.movements.List(ctx, entity.MovementFilter{UserID: ownerID, Limit: recentMovements})
	if err != nil {
		return nil, err
	}
	out := &dto.StatsResponse{
		TotalProducts:      t.Products,
		TotalCategories:    t.Categories,
		TotalUnitTypes:     t.UnitTypes,
		TotalPurchases:     t.Purchases,
		TotalMovements:     t.Movements,
		LowStockCount:      t.LowStock,
		OutOfStockCount:    t.OutOfStock,
		StockUnits:         t.StockUnits,
		InventoryValue:     t.InventoryValue,
		PurchasesTotal:     t.PurchasesTotal,
		ProductsByCategory: toGroups(byCategory),
		PurchasesByStatus:  toGroups(byStatus),
		MovementsByType:    toGroups(byType),
		RecentMovements:    make([]dto.MovementResponse, 0, len(recent)),
	}
	for _, m := range recent {
		out.RecentMovements = append(out.RecentMovements, *audit.ToMovementResponse(m))
	}
	return out, nil
}

func toGroups(in []repository.GroupCount) []dto.GroupCountResponse {
	out := make([]dto.GroupCountResponse, 0, len(in))
	for _, g := range in {
		out = append(out, dto.GroupCountResponse{Key: g.Key, Label: g.Label, Count: g.Count})
	}
	return out
}
