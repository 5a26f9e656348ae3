package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/application/inventory"
	"github.com/jhoicas/inventario-compras/internal/application/usecase"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/pkg/validator"
)

// ProductHandler maneja las peticiones HTTP para Product (protegido).
type ProductHandler struct {
	uc    *usecase.ProductUseCase
	stock *inventory.StockUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, stock *inventory.StockUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, stock: stock}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.APIResponse{data=dto.ProductResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.APIResponse{data=dto.ProductResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(50)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.APIResponse{data=dto.ProductListResponse}
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), page)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// LowStock productos con cantidad <= umbral.
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext(), GetActor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.APIResponse{data=dto.ProductResponse}
// @Failure      404   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.UpdateProductRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, fiber.Map{"id": id}, "producto eliminado")
}

// Refill godoc
// @Summary      Recargar stock
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del producto"
// @Param        body  body  dto.RefillRequest  true  "quantity, note"
// @Success      200   {object}  dto.APIResponse{data=dto.ProductResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/products/{id}/refill [post]
func (h *ProductHandler) Refill(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.RefillRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	p, err := h.stock.Refill(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, usecase.ToProductResponse(p))
}

// StockHistory godoc
// @Summary      Historial de stock
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "ID del producto"
// @Param        startDate  query  string  false  "YYYY-MM-DD"
// @Param        endDate    query  string  false  "YYYY-MM-DD"
// @Param        limit      query  int     false  "Límite"
// @Success      200  {object}  dto.APIResponse{data=dto.StockHistoryResponse}
// @Router       /api/products/{id}/stock-history [get]
func (h *ProductHandler) StockHistory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var q dto.HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, domain.Invalid("", "parámetros inválidos"))
	}
	out, err := h.stock.StockHistory(c.UserContext(), GetActor(c), id, q)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// PriceHistory historial de costo/precio de venta; priceType filtra cost|selling.
func (h *ProductHandler) PriceHistory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var q dto.HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, domain.Invalid("", "parámetros inválidos"))
	}
	out, err := h.stock.PriceHistory(c.UserContext(), GetActor(c), id, q)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func parsePage(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, domain.Invalid("", "parámetros de paginación inválidos")
	}
	if err := validator.Struct(page); err != nil {
		return page, err
	}
	page.DefaultPage()
	return page, nil
}
