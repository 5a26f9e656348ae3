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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, user_id, name, sku, sku_key, description,
	COALESCE(category_id::text, ''), COALESCE(unit_type_id::text, ''),
	quantity, cost_price, selling_price, supplier, low_stock_threshold, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.SKU, &p.SKUKey, &p.Description,
		&p.CategoryID, &p.UnitTypeID, &p.Quantity, &p.CostPrice, &p.SellingPrice,
		&p.Supplier, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, user_id, name, sku, sku_key, description, category_id, unit_type_id,
			quantity, cost_price, selling_price, supplier, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.SKU, p.SKUKey, p.Description, nullable(p.CategoryID), nullable(p.UnitTypeID),
		p.Quantity, p.CostPrice, p.SellingPrice, p.Supplier, p.LowStockThreshold, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID dentro del alcance del dueño.
func (r *ProductRepo) GetByID(ctx context.Context, id, ownerID string) (*entity.Product, error) {
	return r.get(ctx, id, ownerID, "")
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id, ownerID string) (*entity.Product, error) {
	return r.get(ctx, id, ownerID, " FOR UPDATE")
}

func (r *ProductRepo) get(ctx context.Context, id, ownerID, lock string) (*entity.Product, error) {
	where, args := ownerFilter(ownerID, []any{id})
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1` + where + lock
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByOwnerAndSKUKey busca por SKU plegado dentro del dueño.
func (r *ProductRepo) GetByOwnerAndSKUKey(ctx context.Context, ownerID, skuKey string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 AND sku_key = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, ownerID, skuKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update reescribe todos los campos editables, incluida la cantidad ya validada.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, sku = $3, sku_key = $4, description = $5, category_id = $6,
			unit_type_id = $7, quantity = $8, cost_price = $9, selling_price = $10, supplier = $11,
			low_stock_threshold = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.SKU, p.SKUKey, p.Description, nullable(p.CategoryID), nullable(p.UnitTypeID),
		p.Quantity, p.CostPrice, p.SellingPrice, p.Supplier, p.LowStockThreshold, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetQuantity fija la cantidad calculada por el motor de stock.
func (r *ProductRepo) SetQuantity(ctx context.Context, id string, quantity int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos del dueño (o todos) con paginación.
func (r *ProductRepo) List(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Product, error) {
	where, args := ownerFilter(ownerID, []any{limit, offset})
	query := `SELECT ` + productColumns + ` FROM products WHERE TRUE` + where +
		` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, args...)
}

// ListLowStock productos con quantity <= low_stock_threshold.
func (r *ProductRepo) ListLowStock(ctx context.Context, ownerID string) ([]*entity.Product, error) {
	where, args := ownerFilter(ownerID, nil)
	query := `SELECT ` + productColumns + ` FROM products WHERE quantity <= low_stock_threshold` + where +
		` ORDER BY quantity ASC, name ASC`
	return r.list(ctx, query, args...)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountByCategory cuántos productos usan la categoría.
func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return n, nil
}

// CountByUnitType cuántos productos usan la unidad.
func (r *ProductRepo) CountByUnitType(ctx context.Context, unitTypeID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE unit_type_id = $1`, unitTypeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products by unit type: %w", err)
	}
	return n, nil
}

// Delete elimina un producto. Las líneas de compra que lo referencian quedan con product_id NULL.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
