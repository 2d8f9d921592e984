package validacion

import "github.com/shopspring/decimal"

// La aritmética interna del motor se hace en centavos (int64) para garantizar
// redondeo exacto; decimal.Decimal se usa solo en la frontera (DTO, DB,
// bloque de calculados).

// centavos convierte un monto decimal a centavos, redondeando al centavo.
func centavos(d decimal.Decimal) int64 {
	return d.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

// desdeCentavos convierte centavos a un decimal con 2 posiciones.
func desdeCentavos(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// porciento aplica un porcentaje entero a un monto no negativo en centavos,
// redondeando al centavo (mitad hacia arriba).
func porciento(monto, pct int64) int64 {
	return (monto*pct + 50) / 100
}

func clamp0(c int64) int64 {
	if c < 0 {
		return 0
	}
	return c
}

func absCentavos(c int64) int64 {
	if c < 0 {
		return -c
	}
	return c
}

func maxCentavos(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
