package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo bitácora append-only en memoria.
type MovementRepo struct {
	s *Store
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, copyMovement(m))
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id, ownerID string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id && owned(ownerID, m.UserID) {
			return r.populateLocked(copyMovement(m)), nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Movement, 0)
	for _, m := range r.s.movements {
		if !matches(m, f) {
			continue
		}
		out = append(out, r.populateLocked(copyMovement(m)))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, 0), nil
}

func (r *MovementRepo) Correct(_ context.Context, id string, patch entity.MovementPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID != id {
			continue
		}
		if patch.Title != nil {
			m.Title = *patch.Title
		}
		if patch.Description != nil {
			m.Description = *patch.Description
		}
		if patch.Metadata != nil {
			m.Metadata = patch.Metadata
		}
		return nil
	}
	return domain.ErrNotFound
}

func matches(m *entity.Movement, f entity.MovementFilter) bool {
	if f.UserID != "" && m.UserID != f.UserID {
		return false
	}
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.DateFrom != nil && m.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && m.CreatedAt.After(*f.DateTo) {
		return false
	}
	if len(f.EventTypes) == 0 {
		return true
	}
	for _, et := range f.EventTypes {
		if m.EventType == et {
			return true
		}
	}
	return false
}

func (r *MovementRepo) populateLocked(m *entity.Movement) *entity.Movement {
	if p, ok := r.s.products[m.ProductID]; ok {
		m.ProductName, m.ProductSKU = p.Name, p.SKU
	}
	if p, ok := r.s.purchases[m.PurchaseID]; ok {
		m.PurchaseNumber = p.PurchaseNumber
	}
	if c, ok := r.s.categories[m.CategoryID]; ok {
		m.CategoryName = c.Name
	}
	return m
}

func copyMovement(m *entity.Movement) *entity.Movement {
	c := *m
	if m.Metadata != nil {
		c.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
