// Package pdf implementa la representación imprimible de una orden de compra
// para enviarla al proveedor.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Orden de Compra + N° + Fecha + Estado               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: Nombre + contacto + dirección                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Insumo | Unidad | Cant | Recibido | C.Unit | Total   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuestos / Envío / TOTAL               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  NOTAS                                                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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

	apppurchase "github.com/jhoicas/Restaurante-api/internal/application/purchase"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

var _ apppurchase.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Etiquetas en español de los estados de la orden.
var statusLabels = map[string]string{
	entity.POStatusDraft:     "BORRADOR",
	entity.POStatusPending:   "PENDIENTE",
	entity.POStatusApproved:  "APROBADA",
	entity.POStatusOrdered:   "ENVIADA",
	entity.POStatusPartial:   "RECEPCIÓN PARCIAL",
	entity.POStatusReceived:  "RECIBIDA",
	entity.POStatusCancelled: "CANCELADA",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa purchase.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GeneratePurchaseOrderPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GeneratePurchaseOrderPDF(
	_ context.Context,
	po *entity.PurchaseOrder,
	supplier *entity.Supplier,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de Compra "+po.OrderNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(po))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(supplier))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(po.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(po))

	if po.Notes != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(notesRow(po))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + número (izq), fecha y estado (der).
func headerRow(po *entity.PurchaseOrder) core.Row {
	fecha := po.CreatedAt.Format("02/01/2006")
	status := statusLabels[po.Status]
	if status == "" {
		status = po.Status
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(po.OrderNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 9,
			}),
		),
		col.New(5).Add(
			text.New("Fecha: "+fecha, props.Text{
				Size: 9, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(status, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 9,
			}),
		),
	)
}

// supplierRow: datos del proveedor.
func supplierRow(s *entity.Supplier) core.Row {
	contacto := s.ContactName
	if s.Phone != "" {
		contacto += "  Tel: " + s.Phone
	}
	if s.Email != "" {
		contacto += "  " + s.Email
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PROVEEDOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 1,
			}),
			text.New(s.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(contacto, props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	header := func(a align.Type) props.Text {
		return props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Color: colorPrimary}
	}
	return row.New(6).Add(
		col.New(4).Add(text.New("Insumo", header(align.Left))),
		col.New(1).Add(text.New("Unidad", header(align.Center))),
		col.New(2).Add(text.New("Cantidad", header(align.Right))),
		col.New(2).Add(text.New("Recibido", header(align.Right))),
		col.New(1).Add(text.New("C. Unit", header(align.Right))),
		col.New(2).Add(text.New("Total", header(align.Right))),
	)
}

func tableItemRows(items []entity.PurchaseOrderItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(it.Name, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(it.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(it.Quantity.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(it.ReceivedQuantity.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(it.UnitCost.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New("$ "+it.TotalCost.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

// totalsRow: subtotal, impuestos, envío y total a pagar.
func totalsRow(po *entity.PurchaseOrder) core.Row {
	label := props.Text{Size: 9, Align: align.Right, Top: 1, Color: colorGray}
	value := props.Text{Size: 9, Align: align.Right, Top: 1}
	return row.New(22).Add(
		col.New(8),
		col.New(2).Add(
			text.New("Subtotal:", label),
			text.New("Impuestos:", props.Text{Size: 9, Align: align.Right, Top: 6, Color: colorGray}),
			text.New("Envío:", props.Text{Size: 9, Align: align.Right, Top: 11, Color: colorGray}),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 16, Color: colorPrimary}),
		),
		col.New(2).Add(
			text.New("$ "+po.Subtotal.StringFixed(2), value),
			text.New("$ "+po.Tax.StringFixed(2), props.Text{Size: 9, Align: align.Right, Top: 6}),
			text.New("$ "+po.Shipping.StringFixed(2), props.Text{Size: 9, Align: align.Right, Top: 11}),
			text.New("$ "+po.Total.StringFixed(2), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 16, Color: colorPrimary}),
		),
	)
}

func notesRow(po *entity.PurchaseOrder) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Notas", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 1}),
			text.New(po.Notes, props.Text{Size: 8, Top: 5}),
		),
	)
}
