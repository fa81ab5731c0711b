package service

import (
	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// PrecioCalculator concentra la aritmética de ajuste de precios.
// Trabaja siempre sobre decimal; el redondeo queda para los bordes.
type PrecioCalculator struct{}

func NewPrecioCalculator() *PrecioCalculator {
	return &PrecioCalculator{}
}

// ResultadoCalculo es el desglose de un ajuste de precio
type ResultadoCalculo struct {
	PrecioFinal         decimal.Decimal
	DescuentoAplicado   decimal.Decimal
	PorcentajeDescuento decimal.Decimal
}

// CalcularPrecioFinal aplica una regla sobre el precio base.
//
// Precedencia dentro de la regla:
// 1. precio_especial: reemplaza directo al base
// 2. descuento_porcentaje: base * (pct / 100)
// 3. descuento_monto: monto fijo, tope en el precio base
//
// Una regla sin ninguno de los tres devuelve el base sin cambios.
func (c *PrecioCalculator) CalcularPrecioFinal(
	precioBase decimal.Decimal,
	precioEspecial *decimal.Decimal,
	descuentoPorcentaje *decimal.Decimal,
	descuentoMonto *decimal.Decimal,
) ResultadoCalculo {
	switch {
	case precioEspecial != nil:
		descuento := precioBase.Sub(*precioEspecial)
		return ResultadoCalculo{
			PrecioFinal:         *precioEspecial,
			DescuentoAplicado:   descuento,
			PorcentajeDescuento: porcentajeSobre(descuento, precioBase),
		}

	case descuentoPorcentaje != nil:
		descuento := precioBase.Mul(*descuentoPorcentaje).Div(cien)
		return ResultadoCalculo{
			PrecioFinal:         precioBase.Sub(descuento),
			DescuentoAplicado:   descuento,
			PorcentajeDescuento: *descuentoPorcentaje,
		}

	case descuentoMonto != nil:
		// El monto fijo nunca deja el precio en negativo
		descuento := *descuentoMonto
		if descuento.GreaterThan(precioBase) {
			descuento = precioBase
		}
		return ResultadoCalculo{
			PrecioFinal:         precioBase.Sub(descuento),
			DescuentoAplicado:   descuento,
			PorcentajeDescuento: porcentajeSobre(descuento, precioBase),
		}
	}

	return ResultadoCalculo{
		PrecioFinal:         precioBase,
		DescuentoAplicado:   decimal.Zero,
		PorcentajeDescuento: decimal.Zero,
	}
}

// porcentajeSobre calcula (parte / total) * 100 cuidando el total cero
func porcentajeSobre(parte, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return parte.Div(total).Mul(cien)
}
