package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/pkg/logger"
	"github.com/jhoicas/inventario-compras/pkg/validator"
)

// ok responde {success:true, data}.
func ok(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Data: data})
}

func okMsg(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{Success: true, Data: data, Message: message})
}

func failWith(c *fiber.Ctx, status int, errText, message string) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Error: errText, Message: message})
}

// pathID lee :id. Un valor que no es UUID no identifica ningún recurso: 404.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.ErrNotFound
	}
	return id, nil
}

// statusFor traduce errores de dominio al contrato HTTP. 0 = inesperado.
func statusFor(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInUse):
		return fiber.StatusConflict
	}
	return 0
}

// fail responde un error de dominio; los inesperados suben al ErrorHandler (500 + log).
func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == 0 {
		return err
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return failWith(c, status, "datos inválidos", ve.Error())
	}
	return failWith(c, status, err.Error(), "")
}

// bind parsea el body JSON y aplica las etiquetas validate.
func bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("", "cuerpo inválido")
	}
	return validator.Struct(out)
}

// ErrorHandler respuesta final para errores no mapeados. En development incluye el detalle en message.
func ErrorHandler(log *logger.Logger, exposeDetail bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return failWith(c, fe.Code, fe.Message, "")
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		msg := ""
		if exposeDetail {
			msg = err.Error()
		}
		return failWith(c, fiber.StatusInternalServerError, "error interno del servidor", msg)
	}
}
