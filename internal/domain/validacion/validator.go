// Package validacion implementa el motor de validación fiscal de comprobantes
// NCF: cálculo de base gravada, ITBIS y total esperado, y reconciliación de
// los valores extraídos contra los derivados con tolerancias configurables.
package validacion

import "time"

// Config tolerancias del motor de reconciliación, en centavos y porciento.
type Config struct {
	// EpsilonCentavos es la tolerancia absoluta: diferencias iguales o
	// menores no generan diagnóstico (ruido de redondeo del OCR).
	EpsilonCentavos int64

	// AdvertenciaPorcien es la tolerancia relativa: diferencias de hasta este
	// porciento del valor esperado se degradan de error a advertencia.
	AdvertenciaPorcien int64

	// TechoAdvertenciaCentavos es el piso absoluto del umbral de advertencia,
	// para que montos pequeños no conviertan centavos de diferencia en error.
	TechoAdvertenciaCentavos int64
}

// ConfigPorDefecto tolerancias de producción: RD$1.00 de epsilon, 5% de
// tolerancia relativa con piso de RD$5.00.
func ConfigPorDefecto() Config {
	return Config{
		EpsilonCentavos:          100,
		AdvertenciaPorcien:       5,
		TechoAdvertenciaCentavos: 500,
	}
}

// Validador es el motor de validación. No guarda estado entre invocaciones:
// la misma entrada produce siempre el mismo veredicto.
type Validador struct {
	cfg   Config
	ahora func() time.Time
}

// NewValidador crea un validador con las tolerancias dadas.
func NewValidador(cfg Config) *Validador {
	return &Validador{cfg: cfg, ahora: time.Now}
}

// NewValidadorConReloj crea un validador con un reloj inyectado, para fijar
// la fecha contra la que se evalúa el vencimiento del NCF.
func NewValidadorConReloj(cfg Config, ahora func() time.Time) *Validador {
	return &Validador{cfg: cfg, ahora: ahora}
}

// Validar ejecuta el ciclo completo: calcula los valores esperados, corre los
// chequeos estructurales y los cruces de tolerancia, y construye el veredicto.
// El bloque de calculados se puebla siempre, incluso con errores.
func (v *Validador) Validar(c Campos) Veredicto {
	cc := calcular(c)

	r := nuevoReconciliador(v.cfg, v.ahora())
	r.estructurales(c, cc)
	r.descuadres(c, cc)

	return construirVeredicto(r.lista(), cc.aCalculados())
}
