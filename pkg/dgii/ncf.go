// Package dgii contiene catálogos y reglas de validación de la DGII
// (República Dominicana): tipos de NCF, formato del comprobante, RNC y
// tasas de retención ISR según Norma General 07-2018.
package dgii

import (
	"fmt"
	"regexp"
)

// Series de comprobantes fiscales.
const (
	SerieB = "B" // Comprobantes tradicionales (papel)
	SerieE = "E" // Comprobantes fiscales electrónicos (e-CF)
)

// tiposNCF catálogo de tipos de comprobante reconocidos.
// La clave es el prefijo de 3 caracteres del NCF (serie + código de tipo).
var tiposNCF = map[string]string{
	"B01": "Factura de Crédito Fiscal",
	"B02": "Factura de Consumidor Final",
	"B04": "Nota de Crédito",
	"B14": "Régimen Especial",
	"B15": "Comprobante Gubernamental",
	"B16": "Comprobante de Exportación",
	"E31": "Factura Electrónica de Crédito Fiscal",
	"E32": "Factura Electrónica de Consumo",
	"E33": "Nota de Débito Electrónica",
	"E34": "Nota de Crédito Electrónica",
	"E41": "Comprobante Electrónico de Compras",
	"E43": "Comprobante Electrónico para Gastos Menores",
	"E44": "Comprobante Electrónico para Regímenes Especiales",
	"E45": "Comprobante Electrónico Gubernamental",
}

// Patrones por serie: B = serie + tipo (2 dígitos) + secuencia de 8 dígitos;
// E = serie + tipo (2 dígitos) + secuencia de 10 a 12 dígitos.
var (
	ncfPatternB = regexp.MustCompile(`^B[0-9]{10}$`)
	ncfPatternE = regexp.MustCompile(`^E[0-9]{10,12}$`)
)

// DescripcionTipoNCF devuelve la descripción del tipo de comprobante y si es
// un tipo reconocido por el catálogo.
func DescripcionTipoNCF(tipo string) (string, bool) {
	desc, ok := tiposNCF[tipo]
	return desc, ok
}

// TipoDesdeNCF extrae el prefijo de tipo (3 caracteres) de un NCF. Devuelve
// cadena vacía si el NCF es demasiado corto.
func TipoDesdeNCF(ncf string) string {
	if len(ncf) < 3 {
		return ""
	}
	return ncf[:3]
}

// ValidarFormatoNCF verifica que el NCF cumple el patrón de numeración de su
// serie. No consulta el catálogo de tipos; para eso usar DescripcionTipoNCF.
func ValidarFormatoNCF(ncf string) error {
	if ncf == "" {
		return fmt.Errorf("dgii: NCF vacío")
	}
	switch ncf[:1] {
	case SerieB:
		if !ncfPatternB.MatchString(ncf) {
			return fmt.Errorf("dgii: NCF serie B debe ser B seguido de 10 dígitos, recibido %q", ncf)
		}
	case SerieE:
		if !ncfPatternE.MatchString(ncf) {
			return fmt.Errorf("dgii: NCF serie E debe ser E seguido de 10 a 12 dígitos, recibido %q", ncf)
		}
	default:
		return fmt.Errorf("dgii: NCF debe comenzar con serie B o E, recibido %q", ncf)
	}
	return nil
}

// CoincideTipo verifica que el prefijo del NCF corresponde al tipo declarado.
// Un tipo vacío no restringe (el OCR puede no haberlo extraído).
func CoincideTipo(ncf, tipo string) bool {
	if tipo == "" {
		return true
	}
	return TipoDesdeNCF(ncf) == tipo
}
