package utils

import (
	"github.com/shopspring/decimal"
)

func ParseFloatToDecimal(number *float64) *decimal.Decimal {
	if number == nil {
		return nil
	}
	d := decimal.NewFromFloat(*number)
	return &d
}

// RoundMoney redondea a 2 decimales. Se aplica sólo en los bordes
// (persistencia y respuesta), nunca en cálculos intermedios.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
