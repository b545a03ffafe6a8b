package util

import (
	"fmt"
	"math"
)

// FormatOmega renders an angular frequency for sweep tables.
func FormatOmega(omega complex128) string {
	if imag(omega) == 0 {
		return fmt.Sprintf("%8.4g", real(omega))
	}
	return fmt.Sprintf("%.4g%+.4gi", real(omega), imag(omega))
}

// FormatResidual renders a relative residual norm.
func FormatResidual(value float64) string {
	if value == 0 {
		return "       0"
	}
	if value >= 1000 || value < 0.001 {
		return fmt.Sprintf("%8.2e", value) // e.g. "5.43e-05"
	}
	return fmt.Sprintf("%8.3g", value)
}

// FormatValueFactor renders a value with an engineering prefix.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}
