package afip

import (
	"fmt"
	"strconv"
	"unicode"
)

// pesos para el dígito verificador del CUIT (módulo 11, de izquierda a derecha
// sobre los 10 primeros dígitos).
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateCUIT valida que el CUIT (con o sin guiones) tenga 11 dígitos y un
// dígito verificador correcto. cuit puede ser "20-26236742-9" o "20262367429".
func ValidateCUIT(cuit string) error {
	digits := extractDigits(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected, err := computeCUITCheckDigit(digits[:10])
	if err != nil {
		return err
	}
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// ValidateCUITNumber valida el CUIT en su representación numérica (como viaja
// en el bloque Auth de WSFEv1). Un CUIT real siempre tiene 11 dígitos sin
// ceros a la izquierda; rellenar con ceros dejaría pasar valores como 0,
// cuyo dígito verificador sobre diez ceros da casualmente 0.
func ValidateCUITNumber(cuit int64) error {
	if cuit < 10000000000 || cuit > 99999999999 {
		return fmt.Errorf("afip: CUIT numérico fuera de rango: %d", cuit)
	}
	return ValidateCUIT(strconv.FormatInt(cuit, 10))
}

func computeCUITCheckDigit(base []byte) (byte, error) {
	if len(base) != 10 {
		return 0, fmt.Errorf("afip: se requieren 10 dígitos base, se recibieron %d", len(base))
	}
	var sum int
	for i, d := range base {
		sum += int(d-'0') * cuitWeights[i]
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return '0', nil
	case 10:
		// 10 no es un dígito válido: el CUIT con ese prefijo no existe.
		return 0, fmt.Errorf("afip: el prefijo del CUIT no admite dígito verificador")
	default:
		return byte('0' + dv), nil
	}
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
