package dgii

import (
	"fmt"
	"unicode"
)

// pesos para el dígito verificador del RNC de 9 dígitos (módulo 11, DGII).
// Se aplican a los 8 primeros dígitos, de izquierda a derecha.
var rncWeights = [8]int{7, 9, 8, 6, 5, 4, 3, 2}

// ValidarRNC valida un RNC (9 dígitos, persona jurídica) o una cédula
// (11 dígitos). Acepta separadores de formato ("401-50625-4"). Para RNC de
// 9 dígitos verifica además el dígito verificador módulo 11.
func ValidarRNC(rnc string) error {
	digits := soloDigitos(rnc)
	switch len(digits) {
	case 9:
		return validarDigitoVerificador(digits)
	case 11:
		// Cédula: solo se valida longitud y que sean dígitos.
		return nil
	default:
		return fmt.Errorf("dgii: RNC debe tener 9 dígitos (o cédula de 11), se encontraron %d", len(digits))
	}
}

// validarDigitoVerificador aplica el algoritmo módulo 11 de la DGII sobre los
// 8 primeros dígitos y compara contra el noveno.
func validarDigitoVerificador(digits []byte) error {
	var sum int
	for i := 0; i < 8; i++ {
		sum += int(digits[i]-'0') * rncWeights[i]
	}
	remainder := sum % 11
	var expected byte
	switch remainder {
	case 0:
		expected = '2'
	case 1:
		expected = '1'
	default:
		expected = byte('0' + (11 - remainder))
	}
	if digits[8] != expected {
		return fmt.Errorf("dgii: dígito verificador del RNC inválido: esperado %c, recibido %c", expected, digits[8])
	}
	return nil
}

func soloDigitos(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
