package inventory

import (
	"strings"

	"golang.org/x/text/cases"
)

// Key normaliza un SKU, nombre o abreviatura para comparaciones sin distinguir mayúsculas.
// Es la forma que se persiste en las columnas *_key con índice único por dueño.
func Key(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
