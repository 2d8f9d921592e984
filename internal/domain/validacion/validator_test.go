package validacion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/validacion"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del motor de validación completo: reconciliación con tolerancias,
// chequeos estructurales y construcción del veredicto.
//
// Tolerancias por defecto: epsilon RD$1.00, advertencia hasta el mayor entre
// 5% del esperado y RD$5.00, error por encima.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testNCF       = "B0100000001" // B01: factura de crédito fiscal
	testTipoNCF   = "B01"
	testEmisorRNC = "401506254" // RNC con dígito verificador correcto
)

// facturaConsistente devuelve una factura cuyos montos cuadran exactamente:
// base 1000, ITBIS 180, total 1180.
func facturaConsistente() validacion.Campos {
	return validacion.Campos{
		NCF:            testNCF,
		TipoNCF:        testTipoNCF,
		EmisorRNC:      testEmisorRNC,
		MontoServicios: d("1000.00"),
		ITBISFacturado: d("180.00"),
		TotalFactura:   d("1180.00"),
	}
}

func nuevoValidador() *validacion.Validador {
	return validacion.NewValidador(validacion.ConfigPorDefecto())
}

// ── Veredicto global ──────────────────────────────────────────────────────────

func TestValidar_FacturaConsistente_Valida(t *testing.T) {
	v := nuevoValidador().Validar(facturaConsistente())

	assert.True(t, v.Valido, "una factura que cuadra exacta debe ser válida")
	assert.False(t, v.RequiereRevision, "sin advertencias no se requiere revisión")
	assert.Empty(t, v.Errores)
	assert.Empty(t, v.Advertencias)
	assert.True(t, v.Aprobable())
}

func TestValidar_CalculadosSiemprePoblados(t *testing.T) {
	c := facturaConsistente()
	c.ITBISFacturado = d("50.00") // descuadre grave

	v := nuevoValidador().Validar(c)

	require.False(t, v.Valido)
	assert.True(t, d("1000.00").Equal(v.Calculados.BaseGravada),
		"el bloque de calculados se puebla aunque el veredicto sea inválido")
	assert.True(t, d("180.00").Equal(v.Calculados.ITBISEsperado))
	assert.True(t, d("1180.00").Equal(v.Calculados.TotalEsperado))
}

// TestValidar_Idempotente verifica que validar dos veces la misma entrada
// produce veredictos idénticos, lista de diagnósticos incluida y en el mismo
// orden.
func TestValidar_Idempotente(t *testing.T) {
	c := facturaConsistente()
	c.EmisorRNC = ""               // advertencia
	c.ITBISFacturado = d("188.00") // advertencia por descuadre

	val := nuevoValidador()
	v1 := val.Validar(c)
	v2 := val.Validar(c)

	assert.Equal(t, v1, v2, "la misma entrada debe producir el mismo veredicto")
}

// ── Tolerancias sobre el ITBIS ────────────────────────────────────────────────

// TestValidar_ITBISDentroDeEpsilon_Pasa: diferencia de RD$1.00 contra el
// esperado de RD$180.00 queda dentro del epsilon y no genera diagnóstico.
func TestValidar_ITBISDentroDeEpsilon_Pasa(t *testing.T) {
	c := facturaConsistente()
	c.ITBISFacturado = d("181.00")
	c.TotalFactura = d("1181.00")

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido)
	assert.False(t, v.RequiereRevision)
}

// TestValidar_ITBISDescuadreModerado_Advertencia: diferencia de RD$8.00
// (mayor que epsilon, menor que el umbral de 5% = RD$9.00) degrada a
// advertencia y pide revisión.
func TestValidar_ITBISDescuadreModerado_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.ITBISFacturado = d("188.00")
	c.TotalFactura = d("1180.00") // el total declarado sigue cuadrando

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido, "una advertencia no invalida la factura")
	assert.True(t, v.RequiereRevision)
	assert.False(t, v.Aprobable(), "con revisión pendiente no es aprobable directa")
	require.Len(t, v.Advertencias, 1)
	adv := v.Advertencias[0]
	assert.Equal(t, "itbis_facturado", adv.Campo)
	assert.Equal(t, "itbis_descuadre", adv.Codigo)
	require.NotNil(t, adv.Esperado)
	require.NotNil(t, adv.Recibido)
	assert.True(t, d("180.00").Equal(*adv.Esperado))
	assert.True(t, d("188.00").Equal(*adv.Recibido))
}

// TestValidar_ITBISDescuadreGrave_Error: diferencia de RD$30.00 excede el
// umbral de advertencia y se clasifica como error.
func TestValidar_ITBISDescuadreGrave_Error(t *testing.T) {
	c := facturaConsistente()
	c.ITBISFacturado = d("150.00")

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	require.Len(t, v.Errores, 1)
	assert.Equal(t, "itbis_facturado", v.Errores[0].Campo)
	assert.Equal(t, "itbis_descuadre", v.Errores[0].Codigo)
}

// TestValidar_SeveridadMonotona: al reducir la distancia contra el esperado,
// la severidad nunca sube (error → advertencia → sin diagnóstico).
func TestValidar_SeveridadMonotona(t *testing.T) {
	val := nuevoValidador()

	severidad := func(itbis string) int {
		c := facturaConsistente()
		c.ITBISFacturado = d(itbis)
		c.TotalFactura = d("1180.00")
		v := val.Validar(c)
		switch {
		case v.ErrorEnCampo("itbis_facturado"):
			return 2
		case len(v.Advertencias) > 0:
			return 1
		default:
			return 0
		}
	}

	// Distancias decrecientes: 30.00, 8.00, 1.00, 0.00
	niveles := []int{
		severidad("150.00"),
		severidad("188.00"),
		severidad("181.00"),
		severidad("180.00"),
	}
	for i := 1; i < len(niveles); i++ {
		assert.LessOrEqual(t, niveles[i], niveles[i-1],
			"reducir la distancia no puede subir la severidad")
	}
}

// ── Chequeos estructurales ────────────────────────────────────────────────────

func TestValidar_NCFFaltanteConTipo_Error(t *testing.T) {
	c := facturaConsistente()
	c.NCF = ""

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	assert.True(t, v.ErrorEnCampo("ncf"),
		"sin NCF pero con tipo declarado el comprobante es inválido")
}

func TestValidar_NCFYTipoAusentes_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.NCF = ""
	c.TipoNCF = ""

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido, "un recibo sin datos fiscales no es un error duro")
	assert.True(t, v.RequiereRevision)
}

func TestValidar_NCFFormatoInvalido_Error(t *testing.T) {
	c := facturaConsistente()
	c.NCF = "X9900000001"

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	require.Len(t, v.Errores, 1)
	assert.Equal(t, "ncf_formato_invalido", v.Errores[0].Codigo)
}

func TestValidar_NCFNoCorrespondeAlTipo_Error(t *testing.T) {
	c := facturaConsistente()
	c.TipoNCF = "B02" // el NCF empieza con B01

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	require.Len(t, v.Errores, 1)
	assert.Equal(t, "ncf_tipo_no_corresponde", v.Errores[0].Codigo)
}

// TestValidar_DescuentoExcedeMontos: base gravada negativa → error sobre el
// descuento y base cruda visible en los calculados.
func TestValidar_DescuentoExcedeMontos(t *testing.T) {
	c := validacion.Campos{
		NCF:            testNCF,
		TipoNCF:        testTipoNCF,
		EmisorRNC:      testEmisorRNC,
		MontoServicios: d("1000.00"),
		Descuento:      d("1200.00"),
	}

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	assert.True(t, v.ErrorEnCampo("descuento"))
	assert.True(t, d("-200.00").Equal(v.Calculados.BaseGravada),
		"la base cruda negativa debe quedar visible en los calculados")
}

func TestValidar_ITBISSinBase_Error(t *testing.T) {
	c := validacion.Campos{
		NCF:            testNCF,
		TipoNCF:        testTipoNCF,
		EmisorRNC:      testEmisorRNC,
		ITBISFacturado: d("100.00"),
	}

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	assert.True(t, v.ErrorEnCampo("itbis_facturado"),
		"ITBIS facturado sin base gravable es una inconsistencia dura")
}

func TestValidar_EmisorRNCFaltante_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.EmisorRNC = ""

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido)
	assert.True(t, v.RequiereRevision)
	require.Len(t, v.Advertencias, 1)
	assert.Equal(t, "emisor_rnc_faltante", v.Advertencias[0].Codigo)
}

func TestValidar_EmisorRNCInvalido_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.EmisorRNC = "401506255" // dígito verificador alterado

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido)
	require.Len(t, v.Advertencias, 1)
	assert.Equal(t, "emisor_rnc_invalido", v.Advertencias[0].Codigo)
}

// ── Vencimiento del NCF (reloj inyectado) ─────────────────────────────────────

func TestValidar_NCFVencido_Error(t *testing.T) {
	ahora := func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	val := validacion.NewValidadorConReloj(validacion.ConfigPorDefecto(), ahora)

	c := facturaConsistente()
	c.NCFVencimiento = "2024-12-31"

	v := val.Validar(c)

	assert.False(t, v.Valido)
	require.Len(t, v.Errores, 1)
	assert.Equal(t, "ncf_vencido", v.Errores[0].Codigo)
}

func TestValidar_NCFVigente_SinDiagnostico(t *testing.T) {
	ahora := func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	val := validacion.NewValidadorConReloj(validacion.ConfigPorDefecto(), ahora)

	c := facturaConsistente()
	c.NCFVencimiento = "2025-12-31"

	v := val.Validar(c)

	assert.True(t, v.Valido)
	assert.False(t, v.RequiereRevision)
}

func TestValidar_VencimientoIlegible_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.NCFVencimiento = "31/12/2025"

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido)
	require.Len(t, v.Advertencias, 1)
	assert.Equal(t, "ncf_vencimiento_invalido", v.Advertencias[0].Codigo)
}

// ── Retención ISR y propina ───────────────────────────────────────────────────

func TestValidar_RetencionTipoInvalido_Error(t *testing.T) {
	c := facturaConsistente()
	c.RetencionISRTipo = 9
	c.RetencionISRMonto = d("100.00")
	c.TotalFactura = d("1080.00") // total neto de la retención

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	assert.True(t, v.ErrorEnCampo("retencion_isr_tipo"))
}

// TestValidar_RetencionDescuadre: retención tipo 2 (honorarios, 10%) sobre
// base 1000 debería ser 100; declarar 150 dispara la advertencia.
func TestValidar_RetencionDescuadre_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.RetencionISRTipo = 2
	c.RetencionISRMonto = d("150.00")
	c.TotalFactura = d("1030.00") // 1180 - 150, el total cuadra

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido)
	assert.True(t, v.RequiereRevision)
	require.Len(t, v.Advertencias, 1)
	assert.Equal(t, "retencion_descuadre", v.Advertencias[0].Codigo)
}

func TestValidar_PropinaDescuadre_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.PropinaLegal = d("150.00") // 10% de 1000 sería 100
	c.TotalFactura = d("1330.00")

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido)
	assert.True(t, v.RequiereRevision)
	require.Len(t, v.Advertencias, 1)
	assert.Equal(t, "propina_descuadre", v.Advertencias[0].Codigo)
}

// ── Total declarado ───────────────────────────────────────────────────────────

func TestValidar_TotalDescuadreGrave_Error(t *testing.T) {
	c := facturaConsistente()
	c.TotalFactura = d("2000.00")

	v := nuevoValidador().Validar(c)

	assert.False(t, v.Valido)
	assert.True(t, v.ErrorEnCampo("total_factura"))
}

func TestValidar_TotalFaltante_Advertencia(t *testing.T) {
	c := facturaConsistente()
	c.TotalFactura = d("0.00")

	v := nuevoValidador().Validar(c)

	assert.True(t, v.Valido)
	assert.True(t, v.RequiereRevision)
	require.Len(t, v.Advertencias, 1)
	assert.Equal(t, "total_faltante", v.Advertencias[0].Codigo)
}

// ── Propiedades del veredicto ─────────────────────────────────────────────────

// TestValidar_UnDiagnosticoPorCampo: cuando varios chequeos observan el mismo
// campo solo sobrevive el de mayor prioridad. Un NCF mal formado también
// fallaría el cruce de tipo, pero solo debe reportarse el formato.
func TestValidar_UnDiagnosticoPorCampo(t *testing.T) {
	c := facturaConsistente()
	c.NCF = "B01-0000001" // formato inválido y tampoco casa con el tipo

	v := nuevoValidador().Validar(c)

	visto := map[string]int{}
	for _, diag := range append(v.Errores, v.Advertencias...) {
		visto[diag.Campo]++
	}
	for campo, n := range visto {
		assert.Equal(t, 1, n, "el campo %s no debe reportarse más de una vez", campo)
	}
	assert.True(t, v.ErrorEnCampo("ncf"))
}

// TestValidar_OrdenDeterminista: los diagnósticos salen en orden fijo
// (identificación → montos → impuestos → total), no en orden de mapa.
func TestValidar_OrdenDeterminista(t *testing.T) {
	c := validacion.Campos{
		NCF:            "", // error ncf_faltante
		TipoNCF:        testTipoNCF,
		MontoServicios: d("1000.00"),
		ITBISFacturado: d("150.00"),  // error itbis_descuadre
		TotalFactura:   d("2000.00"), // error total_descuadre
	}

	v := nuevoValidador().Validar(c)

	require.Len(t, v.Errores, 3)
	assert.Equal(t, "ncf", v.Errores[0].Campo)
	assert.Equal(t, "itbis_facturado", v.Errores[1].Campo)
	assert.Equal(t, "total_factura", v.Errores[2].Campo)
}

func TestValidar_ListasNuncaNil(t *testing.T) {
	v := nuevoValidador().Validar(facturaConsistente())

	assert.NotNil(t, v.Errores, "la lista de errores serializa como [] y no null")
	assert.NotNil(t, v.Advertencias)
}
