// Package rut valida RUT chilenos con su dígito verificador (módulo 11).
package rut

import (
	"fmt"
	"strings"
	"unicode"
)

// Normalize deja el RUT en forma canónica "12345678-K": sin puntos,
// dígito verificador en mayúscula, separado por guión.
func Normalize(rut string) (string, error) {
	body, dv, err := split(rut)
	if err != nil {
		return "", err
	}
	return body + "-" + string(dv), nil
}

// Validate verifica que el dígito verificador del RUT sea correcto según el
// algoritmo módulo 11 del Registro Civil. Acepta "76.543.210-K", "76543210-K"
// o "76543210K".
func Validate(rut string) error {
	body, dv, err := split(rut)
	if err != nil {
		return err
	}
	expected := computeDV(body)
	if dv != expected {
		return fmt.Errorf("rut: dígito verificador inválido: esperado %c, recibido %c", expected, dv)
	}
	return nil
}

// computeDV calcula el dígito verificador para el cuerpo numérico del RUT.
// Los pesos 2..7 se aplican cíclicamente de derecha a izquierda.
func computeDV(body string) byte {
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

// split separa cuerpo y dígito verificador, descartando puntos y guiones.
func split(rut string) (string, byte, error) {
	var cleaned []rune
	for _, r := range rut {
		switch {
		case unicode.IsDigit(r):
			cleaned = append(cleaned, r)
		case r == 'k' || r == 'K':
			cleaned = append(cleaned, 'K')
		case r == '.' || r == '-' || unicode.IsSpace(r):
			// separadores permitidos
		default:
			return "", 0, fmt.Errorf("rut: carácter inválido %q", r)
		}
	}
	if len(cleaned) < 2 {
		return "", 0, fmt.Errorf("rut: demasiado corto: %q", rut)
	}
	body := string(cleaned[:len(cleaned)-1])
	dv := byte(cleaned[len(cleaned)-1])
	if strings.ContainsRune(body, 'K') {
		return "", 0, fmt.Errorf("rut: la letra K solo puede ser dígito verificador")
	}
	return body, dv, nil
}
