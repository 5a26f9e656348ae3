package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo agregaciones sobre el Store.
type StatsRepo struct {
	s *Store
}

func (r *StatsRepo) Totals(_ context.Context, ownerID string) (*repository.Totals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t := &repository.Totals{InventoryValue: decimal.Zero, PurchasesTotal: decimal.Zero}
	for _, p := range r.s.products {
		if !owned(ownerID, p.UserID) {
			continue
		}
		t.Products++
		t.StockUnits += p.Quantity
		t.InventoryValue = t.InventoryValue.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
		if p.Quantity == 0 {
			t.OutOfStock++
		}
		if p.IsLowStock() {
			t.LowStock++
		}
	}
	for _, c := range r.s.categories {
		if owned(ownerID, c.UserID) {
			t.Categories++
		}
	}
	for _, u := range r.s.units {
		if owned(ownerID, u.UserID) {
			t.UnitTypes++
		}
	}
	for _, p := range r.s.purchases {
		if owned(ownerID, p.UserID) {
			t.Purchases++
			t.PurchasesTotal = t.PurchasesTotal.Add(p.TotalAmount)
		}
	}
	for _, m := range r.s.movements {
		if owned(ownerID, m.UserID) {
			t.Movements++
		}
	}
	return t, nil
}

func (r *StatsRepo) CountUsers(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

func (r *StatsRepo) MovementsByEventType(_ context.Context, ownerID string) ([]repository.GroupCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[string]int{}
	for _, m := range r.s.movements {
		if owned(ownerID, m.UserID) {
			counts[string(m.EventType)]++
		}
	}
	return groups(counts, nil), nil
}

func (r *StatsRepo) ProductsByCategory(_ context.Context, ownerID string) ([]repository.GroupCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[string]int{}
	labels := map[string]string{}
	for _, p := range r.s.products {
		if !owned(ownerID, p.UserID) {
			continue
		}
		counts[p.CategoryID]++
		if p.CategoryID == "" {
			labels[""] = "Sin categoría"
		} else if c, ok := r.s.categories[p.CategoryID]; ok {
			labels[p.CategoryID] = c.Name
		}
	}
	return groups(counts, labels), nil
}

func (r *StatsRepo) PurchasesByStatus(_ context.Context, ownerID string) ([]repository.GroupCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[string]int{}
	for _, p := range r.s.purchases {
		if owned(ownerID, p.UserID) {
			counts[p.Status]++
		}
	}
	return groups(counts, nil), nil
}

func groups(counts map[string]int, labels map[string]string) []repository.GroupCount {
	out := make([]repository.GroupCount, 0, len(counts))
	for k, n := range counts {
		label := k
		if l, ok := labels[k]; ok {
			label = l
		}
		out = append(out, repository.GroupCount{Key: k, Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
