// Package pdf genera la constancia de validación de un comprobante fiscal:
// los campos extraídos, los valores esperados calculados y el detalle de
// errores y advertencias del último veredicto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: NCF + Tipo  │  Estado + Fecha                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Nombre + RNC  /  RECEPTOR: Nombre + RNC            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Concepto | Declarado | Esperado                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DIAGNÓSTICOS: errores y advertencias campo a campo         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda (la constancia no sustituye al comprobante)│
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
	"github.com/shopspring/decimal"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/entity"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/validacion"
	"github.com/CarlosHuyghusrl/facturaia-api/pkg/dgii"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 90, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorError   = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorWarning = &props.Color{Red: 190, Green: 130, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ConstanciaGenerator genera la constancia de validación usando Maroto v2.
type ConstanciaGenerator struct{}

// NewConstanciaGenerator construye el generador.
func NewConstanciaGenerator() *ConstanciaGenerator { return &ConstanciaGenerator{} }

// GenerarConstancia genera el PDF de la constancia y devuelve sus bytes.
// veredicto puede ser nil si la factura aún no fue validada.
func (g *ConstanciaGenerator) GenerarConstancia(
	_ context.Context,
	factura *entity.Factura,
	veredicto *validacion.Veredicto,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Constancia de Validación Fiscal", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(factura))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partesRow(factura))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range montosRows(factura, veredicto) {
		m.AddRows(r)
	}

	if veredicto != nil {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		for _, r := range diagnosticosRows(veredicto) {
			m.AddRows(r)
		}
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: NCF + tipo (izq) y estado + fecha (der).
func headerRow(f *entity.Factura) core.Row {
	ncf := f.NCF
	if ncf == "" {
		ncf = "SIN NCF"
	}
	tipo := f.TipoNCF
	if desc, ok := dgii.DescripcionTipoNCF(dgii.TipoDesdeNCF(f.NCF)); ok {
		tipo = desc
	}
	fecha := f.UpdatedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(ncf, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(tipo, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("CONSTANCIA DE VALIDACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+f.Estado, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// partesRow: emisor y receptor del comprobante.
func partesRow(f *entity.Factura) core.Row {
	return row.New(14).Add(
		col.New(6).Add(
			text.New("EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(f.EmisorNombre, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("RNC: "+nonEmpty(f.EmisorRNC, "—"), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(f.ReceptorNombre, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("RNC: "+nonEmpty(f.ReceptorRNC, "—"), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de montos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Concepto", 6, align.Left),
		h("Declarado RD$", 3, align.Right),
		h("Esperado RD$", 3, align.Right),
	)
}

// montosRows: una fila por cantidad fiscal; la columna esperada solo aplica a
// las cantidades derivadas por el motor.
func montosRows(f *entity.Factura, v *validacion.Veredicto) []core.Row {
	type linea struct {
		concepto  string
		declarado decimal.Decimal
		esperado  *decimal.Decimal
	}
	lineas := []linea{
		{"Monto servicios", f.MontoServicios, nil},
		{"Monto bienes", f.MontoBienes, nil},
		{"Descuento", f.Descuento, nil},
		{"ITBIS facturado", f.ITBISFacturado, nil},
		{"Propina legal", f.PropinaLegal, nil},
		{"Retención ISR", f.RetencionISRMonto, nil},
		{"Total", f.TotalFactura, nil},
	}
	if v != nil {
		lineas[3].esperado = &v.Calculados.ITBISEsperado
		lineas[6].esperado = &v.Calculados.TotalEsperado
	}

	result := make([]core.Row, 0, len(lineas))
	for _, l := range lineas {
		esperado := "—"
		if l.esperado != nil {
			esperado = l.esperado.StringFixed(2)
		}
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(
				l.concepto,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				l.declarado.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				esperado,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// diagnosticosRows: detalle de errores y advertencias del veredicto.
func diagnosticosRows(v *validacion.Veredicto) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("RESULTADO DE LA VALIDACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if len(v.Errores) == 0 && len(v.Advertencias) == 0 {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Sin observaciones: los montos cuadran dentro de tolerancia.", props.Text{
				Size: 8, Top: 1, Left: 2, Color: colorGray,
			}),
		)))
		return rows
	}

	diag := func(d validacion.Diagnostico, c *props.Color, prefijo string) core.Row {
		return row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%s [%s] %s", prefijo, d.Campo, d.Mensaje), props.Text{
				Size: 7.5, Top: 0.5, Left: 2, Color: c,
			}),
		))
	}
	for _, d := range v.Errores {
		rows = append(rows, diag(d, colorError, "ERROR"))
	}
	for _, d := range v.Advertencias {
		rows = append(rows, diag(d, colorWarning, "AVISO"))
	}
	return rows
}

// footerRow: leyenda legal.
func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Constancia generada a partir de los campos extraídos del comprobante y las reglas "+
				"de reconciliación de la DGII. No sustituye al comprobante fiscal original.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
