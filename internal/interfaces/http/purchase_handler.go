package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/application/inventory"
)

// PurchaseHandler compras y su comprobante PDF.
type PurchaseHandler struct {
	uc *inventory.PurchaseUseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *inventory.PurchaseUseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar compra
// @Description  Suma stock a cada producto y congela el costo actual como precio unitario.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "items, totalAmount, supplier..."
// @Success      201   {object}  dto.APIResponse{data=dto.PurchaseResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

func (h *PurchaseHandler) List(c *fiber.Ctx) error {
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

func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
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

// Update solo cabecera: status, supplier, paymentMethod, notes, purchaseDate.
func (h *PurchaseHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.UpdatePurchaseRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete godoc
// @Summary      Eliminar compra
// @Description  Revierte el stock; si no alcanza, el producto queda en 0 y se devuelve un warning.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.APIResponse{data=dto.DeletePurchaseResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/purchases/{id} [delete]
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Delete(c.UserContext(), GetActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	msg := "compra eliminada"
	if len(out.Warnings) > 0 {
		msg = "compra eliminada con advertencias de stock"
	}
	return okMsg(c, out, msg)
}

// PDF godoc
// @Summary      Comprobante PDF de la compra
// @Tags         purchases
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/purchases/{id}/pdf [get]
func (h *PurchaseHandler) PDF(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	data, filename, err := h.uc.PDF(c.UserContext(), GetActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
