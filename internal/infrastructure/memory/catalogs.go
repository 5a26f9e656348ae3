package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.UnitTypeRepository = (*UnitTypeRepo)(nil)
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	s *Store
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.UserID == c.UserID && other.NameKey == c.NameKey {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id, ownerID string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok || !owned(ownerID, c.UserID) {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) GetByOwnerAndNameKey(_ context.Context, ownerID, nameKey string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.UserID == ownerID && c.NameKey == nameKey {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.ID != c.ID && other.UserID == c.UserID && other.NameKey == c.NameKey {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) List(_ context.Context, ownerID string) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Category, 0)
	for _, c := range r.s.categories {
		if owned(ownerID, c.UserID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	return nil
}

// UnitTypeRepo unidades de medida en memoria.
type UnitTypeRepo struct {
	s *Store
}

func (r *UnitTypeRepo) Create(_ context.Context, u *entity.UnitType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflictLocked(u.UserID, u.NameKey, u.AbbreviationKey, u.ID) != nil {
		return domain.ErrDuplicate
	}
	cp := *u
	r.s.units[u.ID] = &cp
	return nil
}

func (r *UnitTypeRepo) GetByID(_ context.Context, id, ownerID string) (*entity.UnitType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.units[id]
	if !ok || !owned(ownerID, u.UserID) {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UnitTypeRepo) FindConflict(_ context.Context, ownerID, nameKey, abbreviationKey, excludeID string) (*entity.UnitType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u := r.conflictLocked(ownerID, nameKey, abbreviationKey, excludeID); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *UnitTypeRepo) conflictLocked(ownerID, nameKey, abbreviationKey, excludeID string) *entity.UnitType {
	for _, u := range r.s.units {
		if u.ID == excludeID || u.UserID != ownerID {
			continue
		}
		if u.NameKey == nameKey || (abbreviationKey != "" && u.AbbreviationKey == abbreviationKey) {
			return u
		}
	}
	return nil
}

func (r *UnitTypeRepo) Update(_ context.Context, u *entity.UnitType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflictLocked(u.UserID, u.NameKey, u.AbbreviationKey, u.ID) != nil {
		return domain.ErrDuplicate
	}
	cp := *u
	r.s.units[u.ID] = &cp
	return nil
}

func (r *UnitTypeRepo) List(_ context.Context, ownerID string) ([]*entity.UnitType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.UnitType, 0)
	for _, u := range r.s.units {
		if owned(ownerID, u.UserID) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *UnitTypeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.units, id)
	return nil
}
