package memory

import "github.com/jhoicas/inventario-compras/internal/domain/entity"

// undoLog guarda el valor previo de cada fila que toca una transacción, la
// primera vez que la escribe. nil significa que la fila no existía.
// Todos los métodos se llaman con Store.mu tomado en escritura.
type undoLog struct {
	products  map[string]*entity.Product
	purchases map[string]*entity.Purchase
}

func newUndoLog() *undoLog {
	return &undoLog{
		products:  map[string]*entity.Product{},
		purchases: map[string]*entity.Purchase{},
	}
}

func (u *undoLog) product(s *Store, id string) {
	if u == nil {
		return
	}
	if _, seen := u.products[id]; seen {
		return
	}
	u.products[id] = copyProduct(s.products[id])
}

func (u *undoLog) purchase(s *Store, id string) {
	if u == nil {
		return
	}
	if _, seen := u.purchases[id]; seen {
		return
	}
	u.purchases[id] = copyPurchase(s.purchases[id])
}

// restore deja las filas tocadas como estaban; el resto del Store no se altera.
func (u *undoLog) restore(s *Store) {
	for id, prev := range u.products {
		if prev == nil {
			delete(s.products, id)
			continue
		}
		s.products[id] = prev
	}
	for id, prev := range u.purchases {
		if prev == nil {
			delete(s.purchases, id)
			continue
		}
		s.purchases[id] = prev
	}
}
