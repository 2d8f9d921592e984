package validacion_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/validacion"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del cálculo fiscal puro: base gravada, ITBIS esperado (18%) y total
// esperado. Los vectores están tomados de facturas NCF reales simplificadas;
// todos los montos son pesos dominicanos con dos decimales.
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestBaseGravada_ServiciosMasBienesMenosDescuento(t *testing.T) {
	c := validacion.Campos{
		MontoServicios: d("1000.00"),
		MontoBienes:    d("500.00"),
		Descuento:      d("200.00"),
	}
	assert.True(t, d("1300.00").Equal(validacion.BaseGravada(c)),
		"base gravada = servicios + bienes - descuento")
}

// TestBaseGravada_NegativaSinRecortar verifica que el descuento mayor que los
// montos produce una base negativa visible, no recortada a cero: el valor
// crudo se necesita para el diagnóstico descuento_excede_montos.
func TestBaseGravada_NegativaSinRecortar(t *testing.T) {
	c := validacion.Campos{
		MontoServicios: d("1000.00"),
		Descuento:      d("1200.00"),
	}
	assert.True(t, d("-200.00").Equal(validacion.BaseGravada(c)),
		"la base cruda debe conservar el valor negativo para diagnóstico")
}

func TestITBISEsperado_TasaGeneral18(t *testing.T) {
	c := validacion.Campos{MontoServicios: d("1000.00")}
	assert.True(t, d("180.00").Equal(validacion.ITBISEsperado(c)),
		"ITBIS esperado = 18% de la base gravada")
}

// TestITBISEsperado_RedondeoAlCentavo verifica redondeo mitad-arriba:
// 18% de 100.03 = 18.0054 → 18.01.
func TestITBISEsperado_RedondeoAlCentavo(t *testing.T) {
	c := validacion.Campos{MontoServicios: d("100.03")}
	assert.True(t, d("18.01").Equal(validacion.ITBISEsperado(c)),
		"el ITBIS se redondea al centavo, mitad hacia arriba")
}

// TestITBISEsperado_BaseNegativaDaCero verifica que una base negativa no
// produce un ITBIS esperado negativo: la derivada usa la base recortada.
func TestITBISEsperado_BaseNegativaDaCero(t *testing.T) {
	c := validacion.Campos{
		MontoServicios: d("100.00"),
		Descuento:      d("500.00"),
	}
	assert.True(t, validacion.ITBISEsperado(c).IsZero(),
		"un ITBIS esperado negativo no tiene sentido fiscal")
}

func TestTotalEsperado_SoloBaseMasITBIS(t *testing.T) {
	c := validacion.Campos{MontoServicios: d("1000.00")}
	assert.True(t, d("1180.00").Equal(validacion.TotalEsperado(c)),
		"sin otros impuestos ni retenciones, total = base + ITBIS")
}

// TestTotalEsperado_TodosLosComponentes cruza los seis componentes:
// base 1000 + ITBIS 180 + ISC 50 + propina 100 + otros 20
// − ITBIS retenido 54 − retención ISR 100 = 1196.
func TestTotalEsperado_TodosLosComponentes(t *testing.T) {
	c := validacion.Campos{
		MontoServicios:    d("1000.00"),
		ISCMonto:          d("50.00"),
		PropinaLegal:      d("100.00"),
		OtrosImpuestos:    d("20.00"),
		ITBISRetenido:     d("54.00"),
		RetencionISRTipo:  2,
		RetencionISRMonto: d("100.00"),
	}
	assert.True(t, d("1196.00").Equal(validacion.TotalEsperado(c)),
		"total esperado = base + ITBIS + ISC + propina + otros - retenciones")
}

func TestMontoFacturado_IgualFormulaQueBase(t *testing.T) {
	c := validacion.Campos{
		MontoServicios: d("800.00"),
		MontoBienes:    d("200.00"),
		Descuento:      d("50.00"),
	}
	assert.True(t, validacion.BaseGravada(c).Equal(validacion.MontoFacturado(c)),
		"monto facturado y base gravada comparten fórmula")
}
