package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const (
	fechaHoraFormato = time.RFC3339
	fechaFormato     = "2006-01-02"
)

// -------------------------------------------------------------------
// PRECIO PRODUCTO
// -------------------------------------------------------------------

// CrearPrecioProductoRequest crea una regla de precio de producto
type CrearPrecioProductoRequest struct {
	ProductoID          int64    `json:"producto_id"`
	Tipo                string   `json:"tipo"`
	PrecioBase          float64  `json:"precio_base"`
	PrecioEspecial      *float64 `json:"precio_especial"`
	DescuentoPorcentaje *float64 `json:"descuento_porcentaje"`
	DescuentoMonto      *float64 `json:"descuento_monto"`
	ClienteID           *int64   `json:"cliente_id"`
	CategoriaID         *int64   `json:"categoria_id"`
	CantidadMinima      *float64 `json:"cantidad_minima"`
	CantidadMaxima      *float64 `json:"cantidad_maxima"`
	FechaInicio         string   `json:"fecha_inicio"` // RFC3339
	FechaFin            *string  `json:"fecha_fin"`
	Nombre              *string  `json:"nombre"`
	Descripcion         *string  `json:"descripcion"`
	Prioridad           int      `json:"prioridad"`
}

func (r CrearPrecioProductoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductoID,
			validation.Required.Error("El producto es obligatorio"),
			validation.Min(int64(1)).Error("El producto es inválido"),
		),
		validation.Field(&r.Tipo,
			validation.Required.Error("El tipo de precio es obligatorio"),
			validation.In("base", "cliente", "volumen", "categoria", "estacional", "promocional").
				Error("Tipo de precio inválido"),
		),
		validation.Field(&r.PrecioBase,
			validation.Required.Error("El precio base es obligatorio"),
			validation.Min(0.0).Error("El precio base debe ser >= 0"),
		),
		validation.Field(&r.PrecioEspecial,
			validation.By(r.validarPrecioEspecial),
		),
		validation.Field(&r.DescuentoPorcentaje,
			validation.When(r.DescuentoPorcentaje != nil,
				validation.Min(0.0).Error("El descuento debe ser >= 0"),
				validation.Max(95.0).Error("El descuento no puede ser mayor al 95%"),
			),
		),
		validation.Field(&r.DescuentoMonto,
			validation.When(r.DescuentoMonto != nil,
				validation.Min(0.0).Error("El descuento debe ser >= 0"),
			),
		),
		validation.Field(&r.CantidadMinima,
			validation.When(r.CantidadMinima != nil,
				validation.Min(0.0).Error("La cantidad mínima debe ser >= 0"),
			),
		),
		validation.Field(&r.CantidadMaxima,
			validation.By(r.validarRangoCantidad),
		),
		validation.Field(&r.FechaInicio,
			validation.Required.Error("La fecha de inicio es obligatoria"),
			validation.Date(fechaHoraFormato).Error("Formato de fecha inválido (RFC3339)"),
		),
		validation.Field(&r.FechaFin,
			validation.By(r.validarFechaFin),
		),
		validation.Field(&r.Nombre,
			validation.When(r.Nombre != nil,
				validation.Length(0, 255).Error("El nombre no puede superar 255 caracteres"),
			),
		),
		validation.Field(&r.Prioridad,
			validation.Min(1).Error("La prioridad debe estar entre 1 y 3"),
			validation.Max(3).Error("La prioridad debe estar entre 1 y 3"),
		),
	)
}

// El precio especial tiene que quedar por debajo del base,
// si no la regla nunca podría abaratar nada.
func (r CrearPrecioProductoRequest) validarPrecioEspecial(value interface{}) error {
	if r.PrecioEspecial == nil {
		return nil
	}
	if *r.PrecioEspecial < 0 {
		return validation.NewError("precio_especial_negativo", "El precio especial debe ser >= 0")
	}
	if *r.PrecioEspecial >= r.PrecioBase {
		return validation.NewError("precio_especial_invalido", "El precio especial debe ser menor al precio base")
	}
	return nil
}

func (r CrearPrecioProductoRequest) validarRangoCantidad(value interface{}) error {
	if r.CantidadMaxima == nil {
		return nil
	}
	if *r.CantidadMaxima < 0 {
		return validation.NewError("cantidad_maxima_negativa", "La cantidad máxima debe ser >= 0")
	}
	if r.CantidadMinima != nil && *r.CantidadMaxima <= *r.CantidadMinima {
		return validation.NewError("rango_cantidad_invalido", "La cantidad máxima debe ser mayor a la mínima")
	}
	return nil
}

func (r CrearPrecioProductoRequest) validarFechaFin(value interface{}) error {
	return validarFinPosterior(r.FechaInicio, r.FechaFin)
}

// validarFinPosterior exige fecha_fin > fecha_inicio cuando ambas existen
func validarFinPosterior(inicio string, fin *string) error {
	if fin == nil {
		return nil
	}
	finT, err := time.Parse(fechaHoraFormato, *fin)
	if err != nil {
		return validation.NewError("fecha_fin_invalida", "Formato de fecha inválido (RFC3339)")
	}
	inicioT, err := time.Parse(fechaHoraFormato, inicio)
	if err != nil {
		// la fecha de inicio tiene su propia regla, acá no se reporta
		return nil
	}
	if !finT.After(inicioT) {
		return validation.NewError("fecha_fin_anterior", "La fecha de fin debe ser posterior a la fecha de inicio")
	}
	return nil
}

// ActualizarPrecioProductoRequest actualiza parcialmente una regla.
// Los campos nil no se tocan.
type ActualizarPrecioProductoRequest struct {
	PrecioBase          *float64 `json:"precio_base"`
	PrecioEspecial      *float64 `json:"precio_especial"`
	DescuentoPorcentaje *float64 `json:"descuento_porcentaje"`
	DescuentoMonto      *float64 `json:"descuento_monto"`
	CantidadMinima      *float64 `json:"cantidad_minima"`
	CantidadMaxima      *float64 `json:"cantidad_maxima"`
	FechaInicio         *string  `json:"fecha_inicio"`
	FechaFin            *string  `json:"fecha_fin"`
	Nombre              *string  `json:"nombre"`
	Descripcion         *string  `json:"descripcion"`
	Estado              *string  `json:"estado"`
	Activo              *bool    `json:"activo"`
	Prioridad           *int     `json:"prioridad"`
	Motivo              *string  `json:"motivo"`
}

func (r ActualizarPrecioProductoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PrecioBase,
			validation.When(r.PrecioBase != nil, validation.Min(0.0).Error("El precio base debe ser >= 0")),
		),
		validation.Field(&r.PrecioEspecial,
			validation.When(r.PrecioEspecial != nil, validation.Min(0.0).Error("El precio especial debe ser >= 0")),
		),
		validation.Field(&r.DescuentoPorcentaje,
			validation.When(r.DescuentoPorcentaje != nil,
				validation.Min(0.0).Error("El descuento debe ser >= 0"),
				validation.Max(95.0).Error("El descuento no puede ser mayor al 95%"),
			),
		),
		validation.Field(&r.DescuentoMonto,
			validation.When(r.DescuentoMonto != nil, validation.Min(0.0).Error("El descuento debe ser >= 0")),
		),
		validation.Field(&r.Estado,
			validation.When(r.Estado != nil,
				validation.In("activo", "inactivo", "expirado", "suspendido").Error("Estado inválido"),
			),
		),
		validation.Field(&r.Prioridad,
			validation.When(r.Prioridad != nil,
				validation.Min(1).Error("La prioridad debe estar entre 1 y 3"),
				validation.Max(3).Error("La prioridad debe estar entre 1 y 3"),
			),
		),
	)
}

// -------------------------------------------------------------------
// PRECIO VOLUMEN
// -------------------------------------------------------------------

type CrearPrecioVolumenRequest struct {
	ProductoID          int64    `json:"producto_id"`
	CantidadMinima      float64  `json:"cantidad_minima"`
	CantidadMaxima      *float64 `json:"cantidad_maxima"`
	DescuentoPorcentaje *float64 `json:"descuento_porcentaje"`
	DescuentoMonto      *float64 `json:"descuento_monto"`
	PrecioEspecial      *float64 `json:"precio_especial"`
	ClienteID           *int64   `json:"cliente_id"`
	CategoriaID         *int64   `json:"categoria_id"`
	FechaInicio         string   `json:"fecha_inicio"`
	FechaFin            *string  `json:"fecha_fin"`
	Nombre              *string  `json:"nombre"`
	Descripcion         *string  `json:"descripcion"`
	Prioridad           int      `json:"prioridad"`
}

func (r CrearPrecioVolumenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductoID,
			validation.Required.Error("El producto es obligatorio"),
			validation.Min(int64(1)).Error("El producto es inválido"),
		),
		validation.Field(&r.CantidadMinima,
			validation.Min(0.0).Error("La cantidad mínima debe ser >= 0"),
		),
		validation.Field(&r.CantidadMaxima,
			validation.By(r.validarRangoCantidad),
		),
		validation.Field(&r.DescuentoPorcentaje,
			validation.When(r.DescuentoPorcentaje != nil,
				validation.Min(0.0).Error("El descuento debe ser >= 0"),
				validation.Max(95.0).Error("El descuento no puede ser mayor al 95%"),
			),
		),
		validation.Field(&r.DescuentoMonto,
			validation.When(r.DescuentoMonto != nil, validation.Min(0.0).Error("El descuento debe ser >= 0")),
		),
		validation.Field(&r.PrecioEspecial,
			validation.When(r.PrecioEspecial != nil, validation.Min(0.0).Error("El precio especial debe ser >= 0")),
		),
		validation.Field(&r.FechaInicio,
			validation.Required.Error("La fecha de inicio es obligatoria"),
			validation.Date(fechaHoraFormato).Error("Formato de fecha inválido (RFC3339)"),
		),
		validation.Field(&r.FechaFin, validation.By(func(interface{}) error {
			return validarFinPosterior(r.FechaInicio, r.FechaFin)
		})),
		validation.Field(&r.Prioridad,
			validation.Min(1).Error("La prioridad debe estar entre 1 y 3"),
			validation.Max(3).Error("La prioridad debe estar entre 1 y 3"),
		),
	)
}

func (r CrearPrecioVolumenRequest) validarRangoCantidad(value interface{}) error {
	if r.CantidadMaxima == nil {
		return nil
	}
	if *r.CantidadMaxima <= r.CantidadMinima {
		return validation.NewError("rango_cantidad_invalido", "La cantidad máxima debe ser mayor a la mínima")
	}
	return nil
}

// -------------------------------------------------------------------
// PRECIO CATEGORIA
// -------------------------------------------------------------------

type CrearPrecioCategoriaRequest struct {
	CategoriaID         int64    `json:"categoria_id"`
	DescuentoPorcentaje *float64 `json:"descuento_porcentaje"`
	DescuentoMonto      *float64 `json:"descuento_monto"`
	Multiplicador       *float64 `json:"multiplicador"`
	ClienteID           *int64   `json:"cliente_id"`
	ProductoID          *int64   `json:"producto_id"`
	FechaInicio         string   `json:"fecha_inicio"`
	FechaFin            *string  `json:"fecha_fin"`
	Nombre              *string  `json:"nombre"`
	Descripcion         *string  `json:"descripcion"`
	Prioridad           int      `json:"prioridad"`
}

func (r CrearPrecioCategoriaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CategoriaID,
			validation.Required.Error("La categoría es obligatoria"),
			validation.Min(int64(1)).Error("La categoría es inválida"),
		),
		validation.Field(&r.DescuentoPorcentaje,
			validation.When(r.DescuentoPorcentaje != nil,
				validation.Min(0.0).Error("El descuento debe ser >= 0"),
				validation.Max(95.0).Error("El descuento no puede ser mayor al 95%"),
			),
		),
		validation.Field(&r.DescuentoMonto,
			validation.When(r.DescuentoMonto != nil, validation.Min(0.0).Error("El descuento debe ser >= 0")),
		),
		validation.Field(&r.Multiplicador,
			validation.By(r.validarMultiplicador),
		),
		validation.Field(&r.FechaInicio,
			validation.Required.Error("La fecha de inicio es obligatoria"),
			validation.Date(fechaHoraFormato).Error("Formato de fecha inválido (RFC3339)"),
		),
		validation.Field(&r.FechaFin, validation.By(func(interface{}) error {
			return validarFinPosterior(r.FechaInicio, r.FechaFin)
		})),
		validation.Field(&r.Prioridad,
			validation.Min(1).Error("La prioridad debe estar entre 1 y 3"),
			validation.Max(3).Error("La prioridad debe estar entre 1 y 3"),
		),
	)
}

// El multiplicador escala el precio base: tiene que ser > 0 y <= 10
func (r CrearPrecioCategoriaRequest) validarMultiplicador(value interface{}) error {
	if r.Multiplicador == nil {
		return nil
	}
	if *r.Multiplicador <= 0 || *r.Multiplicador > 10 {
		return validation.NewError("multiplicador_invalido", "El multiplicador debe ser mayor a 0 y hasta 10")
	}
	return nil
}

// -------------------------------------------------------------------
// PRECIO ESTACIONAL
// -------------------------------------------------------------------

type CrearPrecioEstacionalRequest struct {
	ProductoID          int64    `json:"producto_id"`
	NombreTemporada     string   `json:"nombre_temporada"`
	DescuentoPorcentaje *float64 `json:"descuento_porcentaje"`
	DescuentoMonto      *float64 `json:"descuento_monto"`
	PrecioEspecial      *float64 `json:"precio_especial"`
	ClienteID           *int64   `json:"cliente_id"`
	CategoriaID         *int64   `json:"categoria_id"`
	FechaInicio         string   `json:"fecha_inicio"` // YYYY-MM-DD
	FechaFin            string   `json:"fecha_fin"`    // YYYY-MM-DD, obligatoria
	Descripcion         *string  `json:"descripcion"`
	Prioridad           int      `json:"prioridad"`
}

func (r CrearPrecioEstacionalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductoID,
			validation.Required.Error("El producto es obligatorio"),
			validation.Min(int64(1)).Error("El producto es inválido"),
		),
		validation.Field(&r.NombreTemporada,
			validation.Required.Error("El nombre de la temporada es obligatorio"),
			validation.Length(1, 100).Error("El nombre de la temporada no puede superar 100 caracteres"),
		),
		validation.Field(&r.DescuentoPorcentaje,
			validation.When(r.DescuentoPorcentaje != nil,
				validation.Min(0.0).Error("El descuento debe ser >= 0"),
				validation.Max(95.0).Error("El descuento no puede ser mayor al 95%"),
			),
		),
		validation.Field(&r.DescuentoMonto,
			validation.When(r.DescuentoMonto != nil, validation.Min(0.0).Error("El descuento debe ser >= 0")),
		),
		validation.Field(&r.PrecioEspecial,
			validation.When(r.PrecioEspecial != nil, validation.Min(0.0).Error("El precio especial debe ser >= 0")),
		),
		validation.Field(&r.FechaInicio,
			validation.Required.Error("La fecha de inicio es obligatoria"),
			validation.Date(fechaFormato).Error("Formato de fecha inválido (YYYY-MM-DD)"),
		),
		validation.Field(&r.FechaFin,
			validation.Required.Error("La fecha de fin es obligatoria"),
			validation.Date(fechaFormato).Error("Formato de fecha inválido (YYYY-MM-DD)"),
			validation.By(r.validarTemporada),
		),
		validation.Field(&r.Prioridad,
			validation.Min(1).Error("La prioridad debe estar entre 1 y 3"),
			validation.Max(3).Error("La prioridad debe estar entre 1 y 3"),
		),
	)
}

func (r CrearPrecioEstacionalRequest) validarTemporada(value interface{}) error {
	inicio, err1 := time.Parse(fechaFormato, r.FechaInicio)
	fin, err2 := time.Parse(fechaFormato, r.FechaFin)
	if err1 != nil || err2 != nil {
		return nil // el formato tiene su propia regla
	}
	if !fin.After(inicio) {
		return validation.NewError("temporada_invalida", "La fecha de fin debe ser posterior a la fecha de inicio")
	}
	return nil
}

// -------------------------------------------------------------------
// FILTROS Y RESOLUCIÓN
// -------------------------------------------------------------------

// PrecioFiltros son los filtros de listado, todos opcionales
type PrecioFiltros struct {
	ProductoID   *int64
	ClienteID    *int64
	CategoriaID  *int64
	Tipo         *string
	Estado       *string
	FechaDesde   *time.Time
	FechaHasta   *time.Time
	SoloActivos  bool
	SoloVigentes bool
}

// AplicarPrecioRequest pide resolver el mejor precio para una línea de venta
type AplicarPrecioRequest struct {
	VentaID    int64   `json:"venta_id"`
	ProductoID int64   `json:"producto_id"`
	ClienteID  *int64  `json:"cliente_id"`
	Cantidad   float64 `json:"cantidad"`
	PrecioBase float64 `json:"precio_base"`
}

func (r AplicarPrecioRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.VentaID,
			validation.Required.Error("La venta es obligatoria"),
			validation.Min(int64(1)).Error("La venta es inválida"),
		),
		validation.Field(&r.ProductoID,
			validation.Required.Error("El producto es obligatorio"),
			validation.Min(int64(1)).Error("El producto es inválido"),
		),
		validation.Field(&r.Cantidad,
			validation.Min(0.0).Error("La cantidad debe ser >= 0"),
		),
		validation.Field(&r.PrecioBase,
			validation.Required.Error("El precio base es obligatorio"),
			validation.Min(0.0).Error("El precio base debe ser >= 0"),
		),
	)
}

// SimularPrecioRequest es la variante sin persistencia: no exige venta
type SimularPrecioRequest struct {
	ProductoID int64   `json:"producto_id"`
	ClienteID  *int64  `json:"cliente_id"`
	Cantidad   float64 `json:"cantidad"`
	PrecioBase float64 `json:"precio_base"`
}

func (r SimularPrecioRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductoID,
			validation.Required.Error("El producto es obligatorio"),
			validation.Min(int64(1)).Error("El producto es inválido"),
		),
		validation.Field(&r.Cantidad,
			validation.Min(0.0).Error("La cantidad debe ser >= 0"),
		),
		validation.Field(&r.PrecioBase,
			validation.Required.Error("El precio base es obligatorio"),
			validation.Min(0.0).Error("El precio base debe ser >= 0"),
		),
	)
}

// AplicarPrecioResponse es el resultado de la resolución.
// Los campos de descuento vienen sólo cuando hubo ajuste.
type AplicarPrecioResponse struct {
	Aplicado            bool             `json:"aplicado"`
	PrecioBase          decimal.Decimal  `json:"precio_base"`
	PrecioFinal         decimal.Decimal  `json:"precio_final"`
	DescuentoAplicado   *decimal.Decimal `json:"descuento_aplicado,omitempty"`
	PorcentajeDescuento *decimal.Decimal `json:"porcentaje_descuento,omitempty"`
	TipoPrecio          *TipoPrecio      `json:"tipo_precio,omitempty"`
	PrecioID            *int64           `json:"precio_id,omitempty"`
	Mensaje             string           `json:"mensaje"`
}

// PrecioResumen agrega contadores globales de reglas
type PrecioResumen struct {
	TotalPrecios       int64            `json:"total_precios"`
	PreciosActivos     int64            `json:"precios_activos"`
	PreciosPorTipo     map[string]int64 `json:"precios_por_tipo"`
	PreciosPorCliente  int64            `json:"precios_por_cliente"`
	PreciosPorVolumen  int64            `json:"precios_por_volumen"`
	PreciosEstacionales int64           `json:"precios_estacionales"`
	DescuentoPromedio  decimal.Decimal  `json:"descuento_promedio"`
}

// PrecioEstadisticas amplía el resumen con cortes por estado y tipo
type PrecioEstadisticas struct {
	TotalPrecios             int64                      `json:"total_precios"`
	PreciosPorTipo           map[string]int64           `json:"precios_por_tipo"`
	PreciosPorEstado         map[string]int64           `json:"precios_por_estado"`
	DescuentoPromedioPorTipo map[string]decimal.Decimal `json:"descuento_promedio_por_tipo"`
}
