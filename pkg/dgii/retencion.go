package dgii

// TipoRetencionISR describe un tipo de retención del Impuesto Sobre la Renta
// según el formato 606 de la DGII.
type TipoRetencionISR struct {
	Codigo      int
	Nombre      string
	TasaPorcien int64 // tasa esperada en porciento sobre la base
}

// tiposRetencionISR catálogo de tipos de retención ISR (códigos 1-8).
var tiposRetencionISR = map[int]TipoRetencionISR{
	1: {Codigo: 1, Nombre: "Alquileres", TasaPorcien: 10},
	2: {Codigo: 2, Nombre: "Honorarios por servicios", TasaPorcien: 10},
	3: {Codigo: 3, Nombre: "Otras rentas", TasaPorcien: 10},
	4: {Codigo: 4, Nombre: "Intereses pagados a personas físicas", TasaPorcien: 10},
	5: {Codigo: 5, Nombre: "Dividendos", TasaPorcien: 10},
	6: {Codigo: 6, Nombre: "Premios", TasaPorcien: 25},
	7: {Codigo: 7, Nombre: "Transferencias de título o propiedad", TasaPorcien: 27},
	8: {Codigo: 8, Nombre: "Otros", TasaPorcien: 10},
}

// RetencionISR devuelve el tipo de retención para un código 1-8 y si existe.
func RetencionISR(codigo int) (TipoRetencionISR, bool) {
	t, ok := tiposRetencionISR[codigo]
	return t, ok
}

// CodigoRetencionValido indica si el código de retención ISR está en el rango
// permitido por el formato 606.
func CodigoRetencionValido(codigo int) bool {
	_, ok := tiposRetencionISR[codigo]
	return ok
}
