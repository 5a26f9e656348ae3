package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/application/tax"
)

// TaxHandler configuración global de impuestos. Lectura para todos; escritura solo admin.
type TaxHandler struct {
	m *tax.Manager
}

func NewTaxHandler(m *tax.Manager) *TaxHandler {
	return &TaxHandler{m: m}
}

// Get godoc
// @Summary      Configuración de impuestos
// @Tags         tax
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.APIResponse{data=dto.TaxConfigResponse}
// @Router       /api/tax [get]
func (h *TaxHandler) Get(c *fiber.Ctx) error {
	out, err := h.m.Get(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Upsert godoc
// @Summary      Actualizar impuestos (admin)
// @Tags         tax
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateTaxRequest  true  "gst, platformFee, status, description"
// @Success      200   {object}  dto.APIResponse{data=dto.TaxConfigResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      403   {object}  dto.APIResponse
// @Router       /api/tax [put]
func (h *TaxHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpdateTaxRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.m.Upsert(c.UserContext(), GetActor(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete no borra el singleton: lo desactiva y registra el cambio.
func (h *TaxHandler) Delete(c *fiber.Ctx) error {
	out, err := h.m.Delete(c.UserContext(), GetActor(c))
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, out, "configuración de impuestos desactivada")
}

func (h *TaxHandler) History(c *fiber.Ctx) error {
	out, err := h.m.History(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
