package validacion

import (
	"fmt"
	"time"

	"github.com/CarlosHuyghusrl/facturaia-api/pkg/dgii"
)

// Prioridades por chequeo. Cuando varios chequeos observan el mismo campo se
// conserva solo el diagnóstico de mayor prioridad (nunca se reporta un campo
// dos veces). Los chequeos estructurales pesan más que los de tolerancia.
const (
	prioNCFFaltante          = 100
	prioNCFFormato           = 90
	prioNCFTipoNoCorresponde = 88
	prioITBISSinBase         = 85
	prioDescuentoExcede      = 85
	prioNCFVencido           = 80
	prioRetencionTipo        = 75
	prioDescuadreError       = 70
	prioMontoFaltante        = 55
	prioNCFTipoDesconocido   = 50
	prioRNCInvalido          = 45
	prioVencimientoInvalido  = 45
	prioRNCFaltante          = 40
	prioRetencionDescuadre   = 35
	prioDescuadreAdvertencia = 30
	prioPropinaDescuadre     = 30
	prioNCFAusente           = 25
)

type diagConPrio struct {
	diag Diagnostico
	prio int
}

// reconciliador acumula diagnósticos de una pasada de validación. Una
// instancia por invocación: el motor no guarda estado entre llamadas.
type reconciliador struct {
	cfg   Config
	ahora time.Time
	diags map[string]diagConPrio
}

func nuevoReconciliador(cfg Config, ahora time.Time) *reconciliador {
	return &reconciliador{cfg: cfg, ahora: ahora, diags: make(map[string]diagConPrio)}
}

// reporta registra un diagnóstico si es de mayor prioridad que el ya
// registrado para el campo.
func (r *reconciliador) reporta(prio int, d Diagnostico) {
	if previo, ok := r.diags[d.Campo]; ok && previo.prio >= prio {
		return
	}
	r.diags[d.Campo] = diagConPrio{diag: d, prio: prio}
}

// lista devuelve los diagnósticos en el orden fijo de campos.
func (r *reconciliador) lista() []Diagnostico {
	var out []Diagnostico
	for _, campo := range ordenCampos {
		if dp, ok := r.diags[campo]; ok {
			out = append(out, dp.diag)
		}
	}
	return out
}

// ── Chequeos estructurales (independientes de tolerancia) ─────────────────────

func (r *reconciliador) estructurales(c Campos, cc calculoCentavos) {
	r.chequeaNCF(c)
	r.chequeaVencimiento(c)
	r.chequeaEmisorRNC(c)
	r.chequeaBase(c, cc)
	r.chequeaRetencionISR(c, cc)
	r.chequeaPropina(c, cc)
}

func (r *reconciliador) chequeaNCF(c Campos) {
	if c.NCF == "" {
		if c.TipoNCF != "" {
			r.reporta(prioNCFFaltante, Diagnostico{
				Campo:     CampoNCF,
				Codigo:    "ncf_faltante",
				Severidad: SeveridadError,
				Mensaje:   fmt.Sprintf("NCF requerido para el tipo de comprobante %s", c.TipoNCF),
			})
			return
		}
		// Sin NCF ni tipo: posible recibo no fiscal, se marca para revisión.
		r.reporta(prioNCFAusente, Diagnostico{
			Campo:     CampoNCF,
			Codigo:    "ncf_ausente",
			Severidad: SeveridadAdvertencia,
			Mensaje:   "el comprobante no tiene NCF; verificar si es un documento fiscal",
		})
		return
	}

	if err := dgii.ValidarFormatoNCF(c.NCF); err != nil {
		r.reporta(prioNCFFormato, Diagnostico{
			Campo:     CampoNCF,
			Codigo:    "ncf_formato_invalido",
			Severidad: SeveridadError,
			Mensaje:   fmt.Sprintf("NCF %q no cumple el patrón de numeración DGII", c.NCF),
		})
		return
	}
	if !dgii.CoincideTipo(c.NCF, c.TipoNCF) {
		r.reporta(prioNCFTipoNoCorresponde, Diagnostico{
			Campo:     CampoNCF,
			Codigo:    "ncf_tipo_no_corresponde",
			Severidad: SeveridadError,
			Mensaje:   fmt.Sprintf("el NCF %s no corresponde al tipo declarado %s", c.NCF, c.TipoNCF),
		})
		return
	}
	if _, conocido := dgii.DescripcionTipoNCF(dgii.TipoDesdeNCF(c.NCF)); !conocido {
		r.reporta(prioNCFTipoDesconocido, Diagnostico{
			Campo:     CampoNCF,
			Codigo:    "ncf_tipo_desconocido",
			Severidad: SeveridadAdvertencia,
			Mensaje:   fmt.Sprintf("tipo de NCF no reconocido: %s", dgii.TipoDesdeNCF(c.NCF)),
		})
	}
}

func (r *reconciliador) chequeaVencimiento(c Campos) {
	if c.NCFVencimiento == "" {
		return
	}
	vencimiento, err := time.Parse("2006-01-02", c.NCFVencimiento)
	if err != nil {
		r.reporta(prioVencimientoInvalido, Diagnostico{
			Campo:     CampoNCFVencimiento,
			Codigo:    "ncf_vencimiento_invalido",
			Severidad: SeveridadAdvertencia,
			Mensaje:   fmt.Sprintf("fecha de vencimiento ilegible: %q", c.NCFVencimiento),
		})
		return
	}
	if r.ahora.After(vencimiento) {
		r.reporta(prioNCFVencido, Diagnostico{
			Campo:     CampoNCFVencimiento,
			Codigo:    "ncf_vencido",
			Severidad: SeveridadError,
			Mensaje:   fmt.Sprintf("NCF vencido desde %s", c.NCFVencimiento),
		})
	}
}

func (r *reconciliador) chequeaEmisorRNC(c Campos) {
	if c.EmisorRNC == "" {
		// El OCR suele perder el RNC del emisor; se pide revisión, no rechazo.
		r.reporta(prioRNCFaltante, Diagnostico{
			Campo:     CampoEmisorRNC,
			Codigo:    "emisor_rnc_faltante",
			Severidad: SeveridadAdvertencia,
			Mensaje:   "RNC del emisor no extraído del comprobante",
		})
		return
	}
	if err := dgii.ValidarRNC(c.EmisorRNC); err != nil {
		r.reporta(prioRNCInvalido, Diagnostico{
			Campo:     CampoEmisorRNC,
			Codigo:    "emisor_rnc_invalido",
			Severidad: SeveridadAdvertencia,
			Mensaje:   fmt.Sprintf("RNC del emisor %q no es válido", c.EmisorRNC),
		})
	}
}

func (r *reconciliador) chequeaBase(c Campos, cc calculoCentavos) {
	servicios := centavos(c.MontoServicios)
	bienes := centavos(c.MontoBienes)

	if cc.baseGravada < 0 {
		r.reporta(prioDescuentoExcede, Diagnostico{
			Campo:     CampoDescuento,
			Codigo:    "descuento_excede_montos",
			Severidad: SeveridadError,
			Mensaje: fmt.Sprintf("el descuento %s excede la suma de servicios y bienes %s",
				c.Descuento.StringFixed(2), desdeCentavos(servicios+bienes).StringFixed(2)),
		})
	}

	if servicios+bienes == 0 {
		if centavos(c.ITBISFacturado) > 0 {
			r.reporta(prioITBISSinBase, Diagnostico{
				Campo:     CampoITBISFacturado,
				Codigo:    "itbis_sin_base",
				Severidad: SeveridadError,
				Mensaje:   "ITBIS facturado sin base gravable (servicios y bienes en cero)",
			})
		}
		if centavos(c.TotalFactura) > 0 {
			// Total sin montos base: probable fallo de extracción, no una
			// factura genuinamente en cero.
			r.reporta(prioMontoFaltante, Diagnostico{
				Campo:     CampoMontoServicios,
				Codigo:    "montos_base_faltantes",
				Severidad: SeveridadAdvertencia,
				Mensaje:   "el total tiene valor pero los montos base están en cero; posible fallo de extracción",
			})
		}
	}
}

func (r *reconciliador) chequeaRetencionISR(c Campos, cc calculoCentavos) {
	monto := centavos(c.RetencionISRMonto)
	if monto <= 0 {
		return
	}
	tipo, ok := dgii.RetencionISR(c.RetencionISRTipo)
	if !ok {
		r.reporta(prioRetencionTipo, Diagnostico{
			Campo:     CampoRetencionISRTipo,
			Codigo:    "retencion_tipo_invalido",
			Severidad: SeveridadError,
			Mensaje:   fmt.Sprintf("tipo de retención ISR %d fuera del rango 1-8", c.RetencionISRTipo),
		})
		return
	}
	base := clamp0(cc.montoFacturado)
	if base == 0 {
		return
	}
	esperado := porciento(base, tipo.TasaPorcien)
	if esperado == 0 {
		return
	}
	if absCentavos(monto-esperado) > porciento(esperado, r.cfg.AdvertenciaPorcien) {
		r.reporta(prioRetencionDescuadre, diagDescuadre(
			CampoRetencionISR, "retencion_descuadre", SeveridadAdvertencia,
			esperado, monto,
			fmt.Sprintf("retención ISR no coincide con la tasa de %d%% para %s", tipo.TasaPorcien, tipo.Nombre),
		))
	}
}

func (r *reconciliador) chequeaPropina(c Campos, cc calculoCentavos) {
	propina := centavos(c.PropinaLegal)
	base := clamp0(cc.montoFacturado)
	if propina <= 0 || base == 0 {
		return
	}
	esperada := porciento(base, TasaPropinaPorcien)
	if absCentavos(propina-esperada) > porciento(esperada, TasaPropinaPorcien) {
		r.reporta(prioPropinaDescuadre, diagDescuadre(
			CampoPropinaLegal, "propina_descuadre", SeveridadAdvertencia,
			esperada, propina,
			"propina legal no coincide con el 10% del monto facturado",
		))
	}
}

// ── Descuadres principales (tolerancia) ───────────────────────────────────────

// descuadres ejecuta los dos cruces que gobiernan el veredicto:
// ITBIS facturado vs esperado y total declarado vs total esperado.
func (r *reconciliador) descuadres(c Campos, cc calculoCentavos) {
	if cc.baseRecortada > 0 {
		r.clasificaDescuadre(
			CampoITBISFacturado, "itbis_descuadre",
			cc.itbisEsperado, centavos(c.ITBISFacturado),
			fmt.Sprintf("ITBIS facturado no coincide con el %d%% de la base gravada", TasaITBISPorcien),
		)
	}

	total := centavos(c.TotalFactura)
	switch {
	case total > 0:
		r.clasificaDescuadre(
			CampoTotalFactura, "total_descuadre",
			cc.totalEsperado, total,
			"el total de la factura no coincide con la suma de sus componentes",
		)
	case cc.totalEsperado > r.cfg.EpsilonCentavos:
		r.reporta(prioMontoFaltante, Diagnostico{
			Campo:     CampoTotalFactura,
			Codigo:    "total_faltante",
			Severidad: SeveridadAdvertencia,
			Mensaje: fmt.Sprintf("total no extraído; el total esperado es %s",
				desdeCentavos(cc.totalEsperado).StringFixed(2)),
		})
	}
}

// clasificaDescuadre aplica la política de tolerancia:
// diferencia <= epsilon → sin diagnóstico; <= umbral de advertencia →
// advertencia; mayor → error. El umbral es el mayor entre el porcentaje del
// esperado y el techo fijo, de modo que la severidad es monótona en la
// distancia |recibido − esperado|.
func (r *reconciliador) clasificaDescuadre(campo, codigo string, esperado, recibido int64, mensaje string) {
	diff := absCentavos(recibido - esperado)
	if diff <= r.cfg.EpsilonCentavos {
		return
	}
	umbral := maxCentavos(porciento(absCentavos(esperado), r.cfg.AdvertenciaPorcien), r.cfg.TechoAdvertenciaCentavos)
	severidad := SeveridadAdvertencia
	prio := prioDescuadreAdvertencia
	if diff > umbral {
		severidad = SeveridadError
		prio = prioDescuadreError
	}
	r.reporta(prio, diagDescuadre(campo, codigo, severidad, esperado, recibido, mensaje))
}

// diagDescuadre construye un diagnóstico con los dos valores nombrados en el
// mensaje, para que la UI nunca muestre un "factura inválida" genérico.
func diagDescuadre(campo, codigo string, sev Severidad, esperado, recibido int64, mensaje string) Diagnostico {
	esp := desdeCentavos(esperado)
	rec := desdeCentavos(recibido)
	return Diagnostico{
		Campo:     campo,
		Codigo:    codigo,
		Severidad: sev,
		Mensaje:   fmt.Sprintf("%s: declarado RD$%s, esperado RD$%s", mensaje, rec.StringFixed(2), esp.StringFixed(2)),
		Esperado:  &esp,
		Recibido:  &rec,
	}
}
