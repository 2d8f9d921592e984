package validacion

import "github.com/shopspring/decimal"

// Tasas estatutarias DGII. Constantes con nombre para absorber futuros
// cambios de tasa sin tocar las fórmulas.
const (
	TasaITBISPorcien   int64 = 18 // ITBIS, tasa general
	TasaPropinaPorcien int64 = 10 // propina legal, Ley 54-32
)

// Campos es la bolsa de campos fiscales de una factura NCF, entrada del
// motor de validación. Los montos son no negativos con 2 decimales; la
// normalización de valores mal formados ocurre antes de esta frontera.
type Campos struct {
	// Identificación del comprobante
	NCF            string
	TipoNCF        string
	NCFVencimiento string // YYYY-MM-DD, opcional

	// Partes
	EmisorRNC      string
	EmisorNombre   string
	ReceptorRNC    string
	ReceptorNombre string

	// Montos base
	MontoServicios decimal.Decimal
	MontoBienes    decimal.Decimal
	Descuento      decimal.Decimal

	// Impuestos
	ITBISFacturado decimal.Decimal
	ITBISRetenido  decimal.Decimal
	ITBISExento    decimal.Decimal
	ISCMonto       decimal.Decimal
	PropinaLegal   decimal.Decimal
	OtrosImpuestos decimal.Decimal

	// Retención ISR
	RetencionISRTipo  int
	RetencionISRMonto decimal.Decimal

	// Total declarado en el comprobante
	TotalFactura decimal.Decimal
}

// calculoCentavos resultado del cálculo fiscal en centavos.
type calculoCentavos struct {
	baseGravada    int64 // cruda: negativa si el descuento excede los montos
	baseRecortada  int64 // base gravada recortada a >= 0
	itbisEsperado  int64
	montoFacturado int64
	totalEsperado  int64
}

// calcular deriva todas las cantidades fiscales esperadas. Puro y determinista.
func calcular(c Campos) calculoCentavos {
	servicios := centavos(c.MontoServicios)
	bienes := centavos(c.MontoBienes)
	descuento := centavos(c.Descuento)

	// La base cruda se conserva para diagnóstico; las derivadas usan la
	// base recortada (un ITBIS esperado negativo no tiene sentido fiscal).
	base := servicios + bienes - descuento
	recortada := clamp0(base)
	itbis := porciento(recortada, TasaITBISPorcien)

	// Monto facturado: misma fórmula que la base, calculado aparte para
	// detectar desacuerdos entre lo declarado y lo derivado.
	montoFacturado := servicios + bienes - descuento

	total := recortada + itbis +
		centavos(c.ISCMonto) + centavos(c.PropinaLegal) + centavos(c.OtrosImpuestos) -
		centavos(c.ITBISRetenido) - centavos(c.RetencionISRMonto)

	return calculoCentavos{
		baseGravada:    base,
		baseRecortada:  recortada,
		itbisEsperado:  itbis,
		montoFacturado: montoFacturado,
		totalEsperado:  total,
	}
}

func (cc calculoCentavos) aCalculados() Calculados {
	return Calculados{
		BaseGravada:    desdeCentavos(cc.baseGravada),
		ITBISEsperado:  desdeCentavos(cc.itbisEsperado),
		TotalEsperado:  desdeCentavos(cc.totalEsperado),
		MontoFacturado: desdeCentavos(cc.montoFacturado),
	}
}

// BaseGravada devuelve servicios + bienes − descuento sin recortar: el valor
// negativo es visible para diagnóstico (el motor lo marca como inconsistencia).
func BaseGravada(c Campos) decimal.Decimal {
	return desdeCentavos(calcular(c).baseGravada)
}

// ITBISEsperado devuelve el 18% de la base gravada (recortada a >= 0),
// redondeado al centavo.
func ITBISEsperado(c Campos) decimal.Decimal {
	return desdeCentavos(calcular(c).itbisEsperado)
}

// MontoFacturado devuelve el monto facturado declarado antes de impuestos.
func MontoFacturado(c Campos) decimal.Decimal {
	return desdeCentavos(calcular(c).montoFacturado)
}

// TotalEsperado reconcilia todos los componentes aditivos y sustractivos:
// base + ITBIS esperado + ISC + propina + otros − ITBIS retenido − retención ISR.
func TotalEsperado(c Campos) decimal.Decimal {
	return desdeCentavos(calcular(c).totalEsperado)
}
