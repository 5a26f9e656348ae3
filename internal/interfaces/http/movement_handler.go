package http

import (
	"encoding/json"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// MovementHandler consulta y corrección del registro de auditoría.
type MovementHandler struct {
	log *audit.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(log *audit.Logger) *MovementHandler {
	return &MovementHandler{log: log}
}

// List godoc
// @Summary      Listar movimientos
// @Description  Un usuario ve solo sus movimientos; el admin ve todos y puede filtrar por userId.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        eventType  query  string  false  "Uno o varios, separados por coma"
// @Param        userId     query  string  false  "Solo admin"
// @Param        productId  query  string  false  "ID de producto"
// @Param        dateFrom   query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        dateTo     query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        limit      query  int     false  "Máximo 1000"  default(100)
// @Success      200  {object}  dto.APIResponse{data=[]dto.MovementResponse}
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, domain.Invalid("", "parámetros inválidos"))
	}
	f, err := audit.ParseQuery(GetActor(c), q)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.log.List(c.UserContext(), f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.log.Get(c.UserContext(), GetActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Correct godoc
// @Summary      Corregir movimiento (admin)
// @Description  Solo title, description y metadata; cualquier otra clave responde 400.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Success      200   {object}  dto.APIResponse{data=dto.MovementResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      403   {object}  dto.APIResponse
// @Router       /api/movements/{id} [patch]
func (h *MovementHandler) Correct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return fail(c, domain.Invalid("", "cuerpo inválido"))
	}
	fields := make([]string, 0, len(raw))
	for k := range raw {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var patch entity.MovementPatch
	if v, found := raw["title"]; found {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fail(c, domain.Invalid("title", "debe ser texto"))
		}
		patch.Title = &s
	}
	if v, found := raw["description"]; found {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fail(c, domain.Invalid("description", "debe ser texto"))
		}
		patch.Description = &s
	}
	if v, found := raw["metadata"]; found {
		if err := json.Unmarshal(v, &patch.Metadata); err != nil {
			return fail(c, domain.Invalid("metadata", "debe ser un objeto"))
		}
	}
	out, err := h.log.Correct(c.UserContext(), GetActor(c), id, fields, patch)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
