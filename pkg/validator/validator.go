package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// Reportar el nombre json del campo, no el del struct.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// decimal.Decimal se valida como número.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Struct valida las etiquetas `validate` y devuelve el primer campo fallido como *domain.ValidationError.
func Struct(data interface{}) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid("", err.Error())
	}
	first := verrs[0]
	return domain.Invalid(first.Field(), describe(first))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "email":
		return "debe ser un email válido"
	case "min", "gte":
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "gt":
		return fmt.Sprintf("debe ser mayor a %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "uuid":
		return "debe ser un UUID válido"
	case "dive":
		return "elemento inválido"
	default:
		return fmt.Sprintf("falla la regla %q", fe.Tag())
	}
}
