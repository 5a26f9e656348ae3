package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	appinv "github.com/jhoicas/inventario-compras/internal/application/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. La edición directa de cantidad
// corre en transacción con la fila bloqueada, igual que compras y recargas.
type ProductUseCase struct {
	txRunner     appinv.TxRunner
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	unitRepo     repository.UnitTypeRepository
	movements    MovementRecorder
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner appinv.TxRunner,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	unitRepo repository.UnitTypeRepository,
	movements MovementRecorder,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		repo:         repo,
		categoryRepo: categoryRepo,
		unitRepo:     unitRepo,
		movements:    movements,
	}
}

// Create crea un producto del actor. El SKU es único por dueño sin distinguir mayúsculas.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" {
		return nil, domain.Invalid("sku", "es requerido")
	}
	if name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity", "no puede ser negativa")
	}
	if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, domain.Invalid("costPrice", "los precios no pueden ser negativos")
	}
	if err := uc.checkRefs(ctx, actor, in.CategoryID, in.UnitTypeID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByOwnerAndSKUKey(ctx, actor.UserID, inventory.Key(sku))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el SKU %q ya existe", domain.ErrDuplicate, sku)
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:                uuid.New().String(),
		UserID:            actor.UserID,
		Name:              name,
		SKU:               sku,
		SKUKey:            inventory.Key(sku),
		Description:       in.Description,
		CategoryID:        in.CategoryID,
		UnitTypeID:        in.UnitTypeID,
		Quantity:          in.Quantity,
		CostPrice:         in.CostPrice,
		SellingPrice:      in.SellingPrice,
		Supplier:          in.Supplier,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventProductCreated,
		Description: fmt.Sprintf("Producto %s (%s) creado con %d unidades", product.Name, product.SKU, product.Quantity),
		Actor:       actor,
		ProductID:   product.ID,
		CategoryID:  product.CategoryID,
		Changes:     inventory.Snapshot(nil, inventory.ProductFields(product)),
	})
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto visible para el actor.
func (uc *ProductUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update edición directa. La cantidad recibida se persiste tal cual (negativa → 0);
// se valida el SKU si cambió. Un solo movimiento product.updated con los campos que cambiaron;
// si nada cambió no se escribe ni se registra movimiento.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.CostPrice != nil && in.CostPrice.IsNegative() {
		return nil, domain.Invalid("costPrice", "no puede ser negativo")
	}
	if in.SellingPrice != nil && in.SellingPrice.IsNegative() {
		return nil, domain.Invalid("sellingPrice", "no puede ser negativo")
	}
	var catID, unitID string
	if in.CategoryID != nil {
		catID = *in.CategoryID
	}
	if in.UnitTypeID != nil {
		unitID = *in.UnitTypeID
	}
	if err := uc.checkRefs(ctx, actor, catID, unitID); err != nil {
		return nil, err
	}

	var (
		product   *entity.Product
		before    entity.FieldSet
		touched   []string
		unchanged bool
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, _ repository.PurchaseRepository) error {
		var err error
		product, err = productRepo.GetForUpdate(ctx, id, actor.OwnerScope())
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		before = inventory.ProductFields(product)
		orig := *product
		touched = touched[:0]

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.Invalid("name", "no puede quedar vacío")
			}
			product.Name = name
			touched = append(touched, "name")
		}
		if in.SKU != nil {
			sku := strings.TrimSpace(*in.SKU)
			if sku == "" {
				return domain.Invalid("sku", "no puede quedar vacío")
			}
			if key := inventory.Key(sku); key != product.SKUKey {
				other, err := productRepo.GetByOwnerAndSKUKey(ctx, product.UserID, key)
				if err != nil {
					return err
				}
				if other != nil && other.ID != product.ID {
					return fmt.Errorf("%w: el SKU %q ya existe", domain.ErrDuplicate, sku)
				}
				product.SKUKey = key
			}
			product.SKU = sku
			touched = append(touched, "sku")
		}
		if in.Description != nil {
			product.Description = *in.Description
			touched = append(touched, "description")
		}
		if in.CategoryID != nil {
			product.CategoryID = *in.CategoryID
			touched = append(touched, "categoryId")
		}
		if in.UnitTypeID != nil {
			product.UnitTypeID = *in.UnitTypeID
			touched = append(touched, "unitTypeId")
		}
		if in.Quantity != nil {
			product.Quantity = inventory.ClampQuantity(*in.Quantity)
			touched = append(touched, "quantity")
		}
		if in.CostPrice != nil {
			product.CostPrice = *in.CostPrice
			touched = append(touched, "costPrice")
		}
		if in.SellingPrice != nil {
			product.SellingPrice = *in.SellingPrice
			touched = append(touched, "sellingPrice")
		}
		if in.Supplier != nil {
			product.Supplier = *in.Supplier
			touched = append(touched, "supplier")
		}
		if in.LowStockThreshold != nil {
			product.LowStockThreshold = *in.LowStockThreshold
			touched = append(touched, "lowStockThreshold")
		}
		if inventory.Diff(before, inventory.ProductFields(product)) == nil && sameUnaudited(&orig, product) {
			unchanged = true
			return nil
		}
		product.UpdatedAt = time.Now().UTC()
		return productRepo.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	if unchanged {
		return ToProductResponse(product), nil
	}

	changes := inventory.Diff(before, inventory.ProductFields(product))
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventProductUpdated,
		Description: describeProductUpdate(product, changes),
		Actor:       actor,
		ProductID:   product.ID,
		CategoryID:  product.CategoryID,
		Metadata:    map[string]any{"updatedFields": touched},
		Changes:     changes,
	})
	return ToProductResponse(product), nil
}

// List lista productos del actor (todos para admin).
func (uc *ProductUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, actor.OwnerScope(), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// LowStock productos en o por debajo de su umbral.
func (uc *ProductUseCase) LowStock(ctx context.Context, actor entity.Actor) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListLowStock(ctx, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return items, nil
}

// Delete elimina un producto. Las líneas de compra que lo referencian conservan nombre y SKU.
func (uc *ProductUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	product, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, product.ID); err != nil {
		return err
	}
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventProductDeleted,
		Description: fmt.Sprintf("Producto %s (%s) eliminado", product.Name, product.SKU),
		Actor:       actor,
		ProductID:   product.ID,
		Metadata:    map[string]any{"name": product.Name, "sku": product.SKU},
		Changes:     inventory.Snapshot(inventory.ProductFields(product), nil),
	})
	return nil
}

func (uc *ProductUseCase) checkRefs(ctx context.Context, actor entity.Actor, categoryID, unitTypeID string) error {
	if categoryID != "" {
		c, err := uc.categoryRepo.GetByID(ctx, categoryID, actor.OwnerScope())
		if err != nil {
			return err
		}
		if c == nil {
			return domain.Invalid("categoryId", "la categoría no existe")
		}
	}
	if unitTypeID != "" {
		u, err := uc.unitRepo.GetByID(ctx, unitTypeID, actor.OwnerScope())
		if err != nil {
			return err
		}
		if u == nil {
			return domain.Invalid("unitTypeId", "la unidad de medida no existe")
		}
	}
	return nil
}

func describeProductUpdate(p *entity.Product, ch *entity.Changes) string {
	if ch == nil {
		return fmt.Sprintf("Producto %s actualizado", p.Name)
	}
	if b, ok := ch.Before[inventory.FieldQuantity]; ok {
		return fmt.Sprintf("Producto %s actualizado; stock %v → %v", p.Name, b, ch.After[inventory.FieldQuantity])
	}
	return fmt.Sprintf("Producto %s actualizado", p.Name)
}

// ToProductResponse mapea un producto a su salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		Name:              p.Name,
		SKU:               p.SKU,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		UnitTypeID:        p.UnitTypeID,
		Quantity:          p.Quantity,
		CostPrice:         p.CostPrice,
		SellingPrice:      p.SellingPrice,
		Supplier:          p.Supplier,
		LowStockThreshold: p.LowStockThreshold,
		IsLowStock:        p.IsLowStock(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// sameUnaudited compara los campos editables que no entran en el diff auditado.
func sameUnaudited(a, b *entity.Product) bool {
	return a.Description == b.Description &&
		a.CategoryID == b.CategoryID &&
		a.UnitTypeID == b.UnitTypeID &&
		a.Supplier == b.Supplier &&
		a.LowStockThreshold == b.LowStockThreshold
}
