package validacion

import "github.com/shopspring/decimal"

// Severidad de un diagnóstico de validación.
type Severidad string

const (
	SeveridadError       Severidad = "error"
	SeveridadAdvertencia Severidad = "warning"
)

// Nombres de campo sobre los que el motor emite diagnósticos. El orden de
// emisión es fijo (identificación → montos → impuestos → total) para que la
// misma entrada produzca siempre la misma lista.
const (
	CampoNCF              = "ncf"
	CampoNCFVencimiento   = "ncf_vencimiento"
	CampoEmisorRNC        = "emisor_rnc"
	CampoMontoServicios   = "monto_servicios"
	CampoDescuento        = "descuento"
	CampoITBISFacturado   = "itbis_facturado"
	CampoRetencionISRTipo = "retencion_isr_tipo"
	CampoRetencionISR     = "retencion_isr_monto"
	CampoPropinaLegal     = "propina_legal"
	CampoTotalFactura     = "total_factura"
)

// ordenCampos orden de emisión de diagnósticos.
var ordenCampos = []string{
	CampoNCF,
	CampoNCFVencimiento,
	CampoEmisorRNC,
	CampoMontoServicios,
	CampoDescuento,
	CampoITBISFacturado,
	CampoRetencionISRTipo,
	CampoRetencionISR,
	CampoPropinaLegal,
	CampoTotalFactura,
}

// Diagnostico es una observación de validación sobre un campo concreto.
// Las claves JSON coinciden con el contrato que consume la app móvil.
type Diagnostico struct {
	Campo     string           `json:"field"`
	Codigo    string           `json:"code"`
	Severidad Severidad        `json:"severity"`
	Mensaje   string           `json:"message"`
	Esperado  *decimal.Decimal `json:"expected,omitempty"`
	Recibido  *decimal.Decimal `json:"actual,omitempty"`
}

// Calculados agrupa los valores fiscales derivados. Se recalculan en cada
// invocación y se pueblan siempre, incluso con veredicto inválido, para que
// la UI pueda mostrar los valores esperados. BaseGravada conserva el valor
// crudo (puede ser negativo si el descuento excede los montos).
type Calculados struct {
	BaseGravada    decimal.Decimal `json:"base_gravada"`
	ITBISEsperado  decimal.Decimal `json:"itbis_esperado"`
	TotalEsperado  decimal.Decimal `json:"total_esperado"`
	MontoFacturado decimal.Decimal `json:"monto_facturado"`
}

// Veredicto es el resultado de una validación completa. Es propiedad del
// llamador durante un ciclo de revisión y se reemplaza entero en cada
// re-validación.
type Veredicto struct {
	Valido           bool          `json:"valid"`
	RequiereRevision bool          `json:"needs_review"`
	Errores          []Diagnostico `json:"errors"`
	Advertencias     []Diagnostico `json:"warnings"`
	Calculados       Calculados    `json:"computed"`
}

// Aprobable indica si el veredicto permite aprobación directa.
func (v Veredicto) Aprobable() bool {
	return v.Valido && !v.RequiereRevision
}

// ErrorEnCampo indica si existe un diagnóstico de severidad error sobre el campo.
func (v Veredicto) ErrorEnCampo(campo string) bool {
	for _, d := range v.Errores {
		if d.Campo == campo {
			return true
		}
	}
	return false
}

// construirVeredicto separa diagnósticos en errores y advertencias y deriva
// los indicadores agregados. Las listas nunca son nil para que el veredicto
// serialice igual con y sin diagnósticos.
func construirVeredicto(diags []Diagnostico, calc Calculados) Veredicto {
	v := Veredicto{
		Errores:      []Diagnostico{},
		Advertencias: []Diagnostico{},
		Calculados:   calc,
	}
	for _, d := range diags {
		if d.Severidad == SeveridadError {
			v.Errores = append(v.Errores, d)
		} else {
			v.Advertencias = append(v.Advertencias, d)
		}
	}
	v.Valido = len(v.Errores) == 0
	v.RequiereRevision = v.Valido && len(v.Advertencias) > 0
	return v
}
