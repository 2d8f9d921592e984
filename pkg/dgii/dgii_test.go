package dgii_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CarlosHuyghusrl/facturaia-api/pkg/dgii"
)

// ── Formato NCF ───────────────────────────────────────────────────────────────

func TestValidarFormatoNCF_SerieB(t *testing.T) {
	assert.NoError(t, dgii.ValidarFormatoNCF("B0100000001"))
	assert.NoError(t, dgii.ValidarFormatoNCF("B0212345678"))
}

func TestValidarFormatoNCF_SerieE(t *testing.T) {
	// e-CF: entre 10 y 12 dígitos tras la serie
	assert.NoError(t, dgii.ValidarFormatoNCF("E310000000001"))
	assert.NoError(t, dgii.ValidarFormatoNCF("E3100000001"))
}

func TestValidarFormatoNCF_Invalidos(t *testing.T) {
	casos := []string{
		"",              // vacío
		"A0100000001",   // serie desconocida
		"B010000001",    // serie B con 9 dígitos
		"B01000000012",  // serie B con 11 dígitos
		"B01-0000001",   // separador no permitido
		"b0100000001",   // minúscula
		"E31000000",     // serie E demasiado corta
		"E3100000000012", // serie E demasiado larga
	}
	for _, ncf := range casos {
		assert.Error(t, dgii.ValidarFormatoNCF(ncf), "NCF %q debería ser inválido", ncf)
	}
}

func TestCoincideTipo(t *testing.T) {
	assert.True(t, dgii.CoincideTipo("B0100000001", "B01"))
	assert.True(t, dgii.CoincideTipo("B0100000001", ""), "tipo vacío no restringe")
	assert.False(t, dgii.CoincideTipo("B0100000001", "B02"))
}

func TestDescripcionTipoNCF(t *testing.T) {
	desc, ok := dgii.DescripcionTipoNCF("B01")
	assert.True(t, ok)
	assert.NotEmpty(t, desc)

	_, ok = dgii.DescripcionTipoNCF("B99")
	assert.False(t, ok)
}

// ── RNC y cédula ──────────────────────────────────────────────────────────────

func TestValidarRNC_DigitoVerificadorCorrecto(t *testing.T) {
	// RNC de la propia DGII
	assert.NoError(t, dgii.ValidarRNC("401506254"))
}

func TestValidarRNC_DigitoVerificadorIncorrecto(t *testing.T) {
	assert.Error(t, dgii.ValidarRNC("401506255"))
}

func TestValidarRNC_CedulaSoloLongitud(t *testing.T) {
	assert.NoError(t, dgii.ValidarRNC("00112345678"))
}

func TestValidarRNC_Invalidos(t *testing.T) {
	casos := []string{"", "12345", "40150625A", "1234567890"}
	for _, rnc := range casos {
		assert.Error(t, dgii.ValidarRNC(rnc), "RNC %q debería ser inválido", rnc)
	}
}

// ── Retención ISR ─────────────────────────────────────────────────────────────

func TestRetencionISR_Tasas(t *testing.T) {
	honorarios, ok := dgii.RetencionISR(2)
	assert.True(t, ok)
	assert.EqualValues(t, 10, honorarios.TasaPorcien)

	premios, ok := dgii.RetencionISR(6)
	assert.True(t, ok)
	assert.EqualValues(t, 25, premios.TasaPorcien)

	transferencias, ok := dgii.RetencionISR(7)
	assert.True(t, ok)
	assert.EqualValues(t, 27, transferencias.TasaPorcien)
}

func TestCodigoRetencionValido(t *testing.T) {
	for codigo := 1; codigo <= 8; codigo++ {
		assert.True(t, dgii.CodigoRetencionValido(codigo))
	}
	assert.False(t, dgii.CodigoRetencionValido(0))
	assert.False(t, dgii.CodigoRetencionValido(9))
}
