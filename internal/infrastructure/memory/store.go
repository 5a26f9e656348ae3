// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORE_DRIVER=memory para desarrollo local y como doble en los tests.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex // serializa transacciones, equivale al bloqueo de fila

	users      map[string]*entity.User
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	units      map[string]*entity.UnitType
	purchases  map[string]*entity.Purchase
	movements  []*entity.Movement
	tax        *entity.TaxConfig
	settings   map[string]*entity.UserSettings
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		users:      map[string]*entity.User{},
		products:   map[string]*entity.Product{},
		categories: map[string]*entity.Category{},
		units:      map[string]*entity.UnitType{},
		purchases:  map[string]*entity.Purchase{},
		settings:   map[string]*entity.UserSettings{},
	}
}

// Repos accesos a cada repositorio sobre el mismo Store.
func (s *Store) Users() *UserRepo                { return &UserRepo{s: s} }
func (s *Store) Products() *ProductRepo          { return &ProductRepo{s: s} }
func (s *Store) Categories() *CategoryRepo       { return &CategoryRepo{s: s} }
func (s *Store) UnitTypes() *UnitTypeRepo        { return &UnitTypeRepo{s: s} }
func (s *Store) Purchases() *PurchaseRepo        { return &PurchaseRepo{s: s} }
func (s *Store) Movements() *MovementRepo        { return &MovementRepo{s: s} }
func (s *Store) TaxConfig() *TaxConfigRepo       { return &TaxConfigRepo{s: s} }
func (s *Store) UserSettings() *UserSettingsRepo { return &UserSettingsRepo{s: s} }
func (s *Store) Stats() *StatsRepo               { return &StatsRepo{s: s} }
func (s *Store) TxRunner() *TxRunner             { return &TxRunner{s: s} }

// TxRunner ejecuta fn de forma serializada; si fn falla deshace solo las filas
// de productos y compras que fn escribió.
type TxRunner struct {
	s *Store
}

// Run ver TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	purchaseRepo repository.PurchaseRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	undo := newUndoLog()
	if err := fn(&ProductRepo{s: r.s, undo: undo}, &PurchaseRepo{s: r.s, undo: undo}); err != nil {
		r.s.mu.Lock()
		undo.restore(r.s)
		r.s.mu.Unlock()
		return err
	}
	return nil
}

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyPurchase(p *entity.Purchase) *entity.Purchase {
	if p == nil {
		return nil
	}
	c := *p
	c.Items = append([]entity.PurchaseItem(nil), p.Items...)
	return &c
}

func owned(ownerID, userID string) bool {
	return ownerID == "" || ownerID == userID
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
