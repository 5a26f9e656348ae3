package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, purchase_number, user_id, total_amount, status, supplier, payment_method, notes,
	purchase_date, created_at, updated_at`

// PurchaseRepo compras y sus líneas sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de persistencia para compras. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	if err := row.Scan(&p.ID, &p.PurchaseNumber, &p.UserID, &p.TotalAmount, &p.Status, &p.Supplier,
		&p.PaymentMethod, &p.Notes, &p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta cabecera y líneas. Debe llamarse dentro de TxRunner para que sea atómico.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchases (id, purchase_number, user_id, total_amount, status, supplier, payment_method,
			notes, purchase_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.PurchaseNumber, p.UserID, p.TotalAmount, p.Status, p.Supplier, p.PaymentMethod,
		p.Notes, p.PurchaseDate, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}

	batch := &pgx.Batch{}
	for i, it := range p.Items {
		batch.Queue(`
			INSERT INTO purchase_items (id, purchase_id, product_id, product_name, sku, quantity, unit_price, subtotal, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, p.ID, nullable(it.ProductID), it.ProductName, it.SKU, it.Quantity, it.UnitPrice, it.Subtotal, i,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range p.Items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la compra con sus líneas en el orden original.
func (r *PurchaseRepo) GetByID(ctx context.Context, id, ownerID string) (*entity.Purchase, error) {
	where, args := ownerFilter(ownerID, []any{id})
	p, err := scanPurchase(r.q.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Purchase{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Update solo toca la cabecera; las líneas son inmutables.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchases SET status = $2, supplier = $3, payment_method = $4, notes = $5, purchase_date = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Status, p.Supplier, p.PaymentMethod, p.Notes, p.PurchaseDate, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PurchaseRepo) List(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Purchase, error) {
	where, args := ownerFilter(ownerID, []any{limit, offset})
	rows, err := r.q.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE TRUE`+where+
		` ORDER BY purchase_date DESC LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	list := make([]*entity.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadItems carga las líneas de varias compras en una sola consulta.
func (r *PurchaseRepo) loadItems(ctx context.Context, purchases []*entity.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Purchase, len(purchases))
	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		byID[p.ID] = p
		ids = append(ids, p.ID)
		p.Items = []entity.PurchaseItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, COALESCE(product_id::text, ''), product_name, sku, quantity, unit_price, subtotal
		FROM purchase_items WHERE purchase_id::text = ANY($1) ORDER BY purchase_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.ProductName, &it.SKU,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan purchase item: %w", err)
		}
		if p, ok := byID[it.PurchaseID]; ok {
			p.Items = append(p.Items, it)
		}
	}
	return rows.Err()
}

// Delete borra la compra; las líneas caen por ON DELETE CASCADE.
func (r *PurchaseRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return nil
}
