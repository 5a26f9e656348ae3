package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo agregaciones de solo lectura. ownerID vacío = global.
type StatsRepo struct {
	q       Querier
	builder squirrel.StatementBuilderType
}

func NewStatsRepository(q Querier) *StatsRepo {
	return &StatsRepo{q: q, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

func scoped(b squirrel.SelectBuilder, column, ownerID string) squirrel.SelectBuilder {
	if ownerID == "" {
		return b
	}
	return b.Where(squirrel.Eq{column: ownerID})
}

type productTotals struct {
	Products       int             `db:"products"`
	StockUnits     int             `db:"stock_units"`
	InventoryValue decimal.Decimal `db:"inventory_value"`
	OutOfStock     int             `db:"out_of_stock"`
	LowStock       int             `db:"low_stock"`
}

type purchaseTotals struct {
	Purchases      int             `db:"purchases"`
	PurchasesTotal decimal.Decimal `db:"purchases_total"`
}

func (r *StatsRepo) get(ctx context.Context, dst any, b squirrel.SelectBuilder) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, r.q, dst, sql, args...)
}

func (r *StatsRepo) count(ctx context.Context, table, ownerID string) (int, error) {
	var n int
	if err := r.get(ctx, &n, scoped(r.builder.Select("COUNT(*)").From(table), "user_id", ownerID)); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r *StatsRepo) Totals(ctx context.Context, ownerID string) (*repository.Totals, error) {
	var pt productTotals
	err := r.get(ctx, &pt, scoped(r.builder.Select(
		"COUNT(*) AS products",
		"COALESCE(SUM(quantity), 0) AS stock_units",
		"COALESCE(SUM(quantity * cost_price), 0) AS inventory_value",
		"COUNT(*) FILTER (WHERE quantity = 0) AS out_of_stock",
		"COUNT(*) FILTER (WHERE quantity <= low_stock_threshold) AS low_stock",
	).From("products"), "user_id", ownerID))
	if err != nil {
		return nil, fmt.Errorf("product totals: %w", err)
	}
	var pu purchaseTotals
	err = r.get(ctx, &pu, scoped(r.builder.Select(
		"COUNT(*) AS purchases",
		"COALESCE(SUM(total_amount), 0) AS purchases_total",
	).From("purchases"), "user_id", ownerID))
	if err != nil {
		return nil, fmt.Errorf("purchase totals: %w", err)
	}

	t := &repository.Totals{
		Products:       pt.Products,
		StockUnits:     pt.StockUnits,
		InventoryValue: pt.InventoryValue,
		OutOfStock:     pt.OutOfStock,
		LowStock:       pt.LowStock,
		Purchases:      pu.Purchases,
		PurchasesTotal: pu.PurchasesTotal,
	}
	if t.Categories, err = r.count(ctx, "categories", ownerID); err != nil {
		return nil, err
	}
	if t.UnitTypes, err = r.count(ctx, "unit_types", ownerID); err != nil {
		return nil, err
	}
	if t.Movements, err = r.count(ctx, "movements", ownerID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *StatsRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "users", "")
}

func (r *StatsRepo) groups(ctx context.Context, b squirrel.SelectBuilder) ([]repository.GroupCount, error) {
	sql, args, err := b.OrderBy("count DESC", "key ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	out := make([]repository.GroupCount, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StatsRepo) MovementsByEventType(ctx context.Context, ownerID string) ([]repository.GroupCount, error) {
	out, err := r.groups(ctx, scoped(r.builder.Select(
		"event_type AS key", "event_type AS label", "COUNT(*) AS count",
	).From("movements").GroupBy("event_type"), "user_id", ownerID))
	if err != nil {
		return nil, fmt.Errorf("movements by event type: %w", err)
	}
	return out, nil
}

func (r *StatsRepo) ProductsByCategory(ctx context.Context, ownerID string) ([]repository.GroupCount, error) {
	out, err := r.groups(ctx, scoped(r.builder.Select(
		"COALESCE(p.category_id::text, '') AS key",
		"COALESCE(c.name, 'Sin categoría') AS label",
		"COUNT(*) AS count",
	).From("products p").
		LeftJoin("categories c ON c.id = p.category_id").
		GroupBy("p.category_id", "c.name"), "p.user_id", ownerID))
	if err != nil {
		return nil, fmt.Errorf("products by category: %w", err)
	}
	return out, nil
}

func (r *StatsRepo) PurchasesByStatus(ctx context.Context, ownerID string) ([]repository.GroupCount, error) {
	out, err := r.groups(ctx, scoped(r.builder.Select(
		"status AS key", "status AS label", "COUNT(*) AS count",
	).From("purchases").GroupBy("status"), "user_id", ownerID))
	if err != nil {
		return nil, fmt.Errorf("purchases by status: %w", err)
	}
	return out, nil
}
