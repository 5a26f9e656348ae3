// Package pdf genera el comprobante PDF de una compra a proveedor.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor              │  N° Compra + Fecha + Estado  │
//	│  PROVEEDOR / PAGO                                           │
//	│  TABLA: Cant | Producto | SKU | P.Unit | Subtotal           │
//	│  TOTALES: Σ líneas / TOTAL DECLARADO                        │
//	│  NOTAS + QR con el número de compra                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/application/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

var _ inventory.PurchasePDFGenerator = (*PurchasePDFGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var statusLabels = map[string]string{
	entity.PurchaseStatusPending:   "PENDIENTE",
	entity.PurchaseStatusCompleted: "COMPLETADA",
	entity.PurchaseStatusCancelled: "CANCELADA",
}

// PurchasePDFGenerator comprobante de compra con Maroto v2.
type PurchasePDFGenerator struct {
	issuer string
}

// NewPurchasePDFGenerator issuer es el nombre que encabeza el documento (APP_NAME).
func NewPurchasePDFGenerator(issuer string) *PurchasePDFGenerator {
	return &PurchasePDFGenerator{issuer: issuer}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *PurchasePDFGenerator) Generate(p *entity.Purchase) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Compra "+p.PurchaseNumber, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(p.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(p))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(p))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *PurchasePDFGenerator) headerRow(p *entity.Purchase) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.issuer, "Inventario"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Comprobante de compra a proveedor", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(p.PurchaseNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Fecha: "+p.PurchaseDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Estado: "+nonEmpty(statusLabels[p.Status], strings.ToUpper(p.Status)), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

func supplierRow(p *entity.Purchase) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("PROVEEDOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Forma de pago: %s",
				nonEmpty(p.Supplier, "—"),
				nonEmpty(p.PaymentMethod, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 5, align.Left),
		h("SKU", 2, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func itemRows(items []entity.PurchaseItem) []core.Row {
	out := make([]core.Row, 0, len(items))
	for _, it := range items {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(it.SKU, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(FormatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(FormatMoney(it.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

// totalsRow muestra la suma de líneas y el total declarado por el usuario; pueden diferir (fletes, descuentos).
func totalsRow(p *entity.Purchase) core.Row {
	sum := decimal.Zero
	for _, it := range p.Items {
		sum = sum.Add(it.Subtotal)
	}
	label := func(s string, c *props.Color) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Color: c})
	}
	value := func(s string, top float64, c *props.Color) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top, Color: c})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			label("Suma de líneas:", nil),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 6, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(FormatMoney(sum), 0, nil),
			value(FormatMoney(p.TotalAmount), 6, colorPrimary),
		),
	)
}

func footerRow(p *entity.Purchase) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(p.PurchaseNumber, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Notas", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 3}),
			text.New(nonEmpty(p.Notes, "Sin notas."), props.Text{Size: 8, Color: colorGray, Top: 7, Left: 3}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatMoney "$1.234.567,89": puntos de miles y coma decimal.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := "$" + string(buf) + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
