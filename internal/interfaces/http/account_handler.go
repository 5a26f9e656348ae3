package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/application/usecase"
)

// SettingsHandler preferencias del usuario autenticado.
type SettingsHandler struct {
	uc *usecase.SettingsUseCase
}

func NewSettingsHandler(uc *usecase.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// Get devuelve las preferencias; la primera lectura crea los valores por defecto.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetActor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSettingsRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// StatsHandler dashboard del usuario y global del admin.
type StatsHandler struct {
	uc *usecase.StatsUseCase
}

func NewStatsHandler(uc *usecase.StatsUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

// Mine godoc
// @Summary      Estadísticas del usuario
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.APIResponse{data=dto.StatsResponse}
// @Router       /api/stats [get]
func (h *StatsHandler) Mine(c *fiber.Ctx) error {
	out, err := h.uc.ForUser(c.UserContext(), GetActor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Global godoc
// @Summary      Estadísticas globales (admin)
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.APIResponse{data=dto.AdminStatsResponse}
// @Failure      403  {object}  dto.APIResponse
// @Router       /api/admin/stats [get]
func (h *StatsHandler) Global(c *fiber.Ctx) error {
	out, err := h.uc.Global(c.UserContext(), GetActor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// UserHandler gestión de usuarios (solo admin; el router aplica RequireRole).
type UserHandler struct {
	uc *usecase.UserUseCase
}

func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Editar usuario (admin)
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.APIResponse{data=dto.UserResponse}
// @Failure      404   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/admin/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.UpdateUserRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete borra el usuario y sus recursos; los movimientos se conservan.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, fiber.Map{"id": id}, "usuario eliminado")
}
