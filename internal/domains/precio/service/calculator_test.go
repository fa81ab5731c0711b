package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func TestCalcularPrecioFinal_PrecioEspecial(t *testing.T) {
	calc := NewPrecioCalculator()

	res := calc.CalcularPrecioFinal(dec("100"), decPtr("80"), nil, nil)

	assert.True(t, res.PrecioFinal.Equal(dec("80")))
	assert.True(t, res.DescuentoAplicado.Equal(dec("20")))
	assert.True(t, res.PorcentajeDescuento.Equal(dec("20")))
}

func TestCalcularPrecioFinal_EspecialGanaSobrePorcentaje(t *testing.T) {
	calc := NewPrecioCalculator()

	// Si hay precio especial, el porcentaje y el monto se ignoran
	res := calc.CalcularPrecioFinal(dec("100"), decPtr("90"), decPtr("50"), decPtr("99"))

	assert.True(t, res.PrecioFinal.Equal(dec("90")))
	assert.True(t, res.DescuentoAplicado.Equal(dec("10")))
}

func TestCalcularPrecioFinal_Porcentaje(t *testing.T) {
	calc := NewPrecioCalculator()

	res := calc.CalcularPrecioFinal(dec("100"), nil, decPtr("15"), nil)

	assert.True(t, res.PrecioFinal.Equal(dec("85")))
	assert.True(t, res.DescuentoAplicado.Equal(dec("15")))
	assert.True(t, res.PorcentajeDescuento.Equal(dec("15")))
}

func TestCalcularPrecioFinal_MontoFijo(t *testing.T) {
	calc := NewPrecioCalculator()

	res := calc.CalcularPrecioFinal(dec("100"), nil, nil, decPtr("30"))

	assert.True(t, res.PrecioFinal.Equal(dec("70")))
	assert.True(t, res.DescuentoAplicado.Equal(dec("30")))
	assert.True(t, res.PorcentajeDescuento.Equal(dec("30")))
}

func TestCalcularPrecioFinal_MontoMayorQueBase(t *testing.T) {
	calc := NewPrecioCalculator()

	// Un descuento fijo de 50 sobre una base de 30 deja el precio en cero,
	// nunca negativo
	res := calc.CalcularPrecioFinal(dec("30"), nil, nil, decPtr("50"))

	assert.True(t, res.PrecioFinal.Equal(dec("0")))
	assert.True(t, res.DescuentoAplicado.Equal(dec("30")))
	assert.True(t, res.PorcentajeDescuento.Equal(dec("100")))
}

func TestCalcularPrecioFinal_SinAjustes(t *testing.T) {
	calc := NewPrecioCalculator()

	res := calc.CalcularPrecioFinal(dec("100"), nil, nil, nil)

	assert.True(t, res.PrecioFinal.Equal(dec("100")))
	assert.True(t, res.DescuentoAplicado.IsZero())
	assert.True(t, res.PorcentajeDescuento.IsZero())
}

func TestCalcularPrecioFinal_BaseCero(t *testing.T) {
	calc := NewPrecioCalculator()

	// Base cero no debe dividir por cero al calcular el porcentaje
	res := calc.CalcularPrecioFinal(dec("0"), nil, nil, decPtr("10"))

	assert.True(t, res.PrecioFinal.Equal(dec("0")))
	assert.True(t, res.PorcentajeDescuento.IsZero())
}
