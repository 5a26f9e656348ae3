package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s    *Store
	undo *undoLog // nil fuera de TxRunner.Run
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.products {
		if other.UserID == p.UserID && other.SKUKey == p.SKUKey {
			return domain.ErrDuplicate
		}
	}
	r.undo.product(r.s, p.ID)
	r.s.products[p.ID] = copyProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id, ownerID string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok || !owned(ownerID, p.UserID) {
		return nil, nil
	}
	return copyProduct(p), nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id, ownerID string) (*entity.Product, error) {
	return r.GetByID(ctx, id, ownerID)
}

func (r *ProductRepo) GetByOwnerAndSKUKey(_ context.Context, ownerID, skuKey string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.UserID == ownerID && p.SKUKey == skuKey {
			return copyProduct(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.s.products {
		if other.ID != p.ID && other.UserID == p.UserID && other.SKUKey == p.SKUKey {
			return domain.ErrDuplicate
		}
	}
	r.undo.product(r.s, p.ID)
	r.s.products[p.ID] = copyProduct(p)
	return nil
}

func (r *ProductRepo) SetQuantity(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.undo.product(r.s, id)
	p.Quantity = quantity
	return nil
}

func (r *ProductRepo) List(_ context.Context, ownerID string, limit, offset int) ([]*entity.Product, error) {
	return page(r.filter(ownerID, nil), limit, offset), nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, ownerID string) ([]*entity.Product, error) {
	return r.filter(ownerID, func(p *entity.Product) bool { return p.IsLowStock() }), nil
}

func (r *ProductRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	return len(r.filter("", func(p *entity.Product) bool { return p.CategoryID == categoryID })), nil
}

func (r *ProductRepo) CountByUnitType(_ context.Context, unitTypeID string) (int, error) {
	return len(r.filter("", func(p *entity.Product) bool { return p.UnitTypeID == unitTypeID })), nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.undo.product(r.s, id)
	delete(r.s.products, id)
	for _, pu := range r.s.purchases {
		for i := range pu.Items {
			if pu.Items[i].ProductID == id {
				r.undo.purchase(r.s, pu.ID)
				pu.Items[i].ProductID = ""
			}
		}
	}
	return nil
}

func (r *ProductRepo) filter(ownerID string, keep func(*entity.Product) bool) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if !owned(ownerID, p.UserID) || (keep != nil && !keep(p)) {
			continue
		}
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
