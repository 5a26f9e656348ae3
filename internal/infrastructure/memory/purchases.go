package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo compras en memoria.
type PurchaseRepo struct {
	s    *Store
	undo *undoLog // nil fuera de TxRunner.Run
}

func (r *PurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.purchases {
		if other.PurchaseNumber == p.PurchaseNumber {
			return domain.ErrDuplicate
		}
	}
	r.undo.purchase(r.s, p.ID)
	r.s.purchases[p.ID] = copyPurchase(p)
	return nil
}

func (r *PurchaseRepo) GetByID(_ context.Context, id, ownerID string) (*entity.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.purchases[id]
	if !ok || !owned(ownerID, p.UserID) {
		return nil, nil
	}
	return copyPurchase(p), nil
}

func (r *PurchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.purchases[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := copyPurchase(cur)
	next.Status = p.Status
	next.Supplier = p.Supplier
	next.PaymentMethod = p.PaymentMethod
	next.Notes = p.Notes
	next.PurchaseDate = p.PurchaseDate
	next.UpdatedAt = p.UpdatedAt
	r.undo.purchase(r.s, p.ID)
	r.s.purchases[p.ID] = next
	return nil
}

func (r *PurchaseRepo) List(_ context.Context, ownerID string, limit, offset int) ([]*entity.Purchase, error) {
	r.s.mu.RLock()
	out := make([]*entity.Purchase, 0)
	for _, p := range r.s.purchases {
		if owned(ownerID, p.UserID) {
			out = append(out, copyPurchase(p))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.After(out[j].PurchaseDate) })
	return page(out, limit, offset), nil
}

func (r *PurchaseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.undo.purchase(r.s, id)
	delete(r.s.purchases, id)
	return nil
}
