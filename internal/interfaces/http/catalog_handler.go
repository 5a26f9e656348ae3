package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/application/usecase"
)

// CategoryHandler CRUD de categorías del usuario.
type CategoryHandler struct {
	uc *usecase.CategoryUseCase
}

func NewCategoryHandler(uc *usecase.CategoryUseCase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryRequest  true  "name, description"
// @Success      201   {object}  dto.APIResponse{data=dto.CategoryResponse}
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetActor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
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

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.CategoryRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete 409 si algún producto la referencia.
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, fiber.Map{"id": id}, "categoría eliminada")
}

// UnitTypeHandler CRUD del catálogo de unidades.
type UnitTypeHandler struct {
	uc *usecase.UnitTypeUseCase
}

func NewUnitTypeHandler(uc *usecase.UnitTypeUseCase) *UnitTypeHandler {
	return &UnitTypeHandler{uc: uc}
}

func (h *UnitTypeHandler) Create(c *fiber.Ctx) error {
	var in dto.UnitTypeRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

func (h *UnitTypeHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetActor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *UnitTypeHandler) GetByID(c *fiber.Ctx) error {
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

func (h *UnitTypeHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.UnitTypeRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *UnitTypeHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, fiber.Map{"id": id}, "unidad eliminada")
}
