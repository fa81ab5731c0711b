package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoPrecio clasifica las reglas de precio dinámico
type TipoPrecio string

const (
	TipoBase        TipoPrecio = "base"
	TipoCliente     TipoPrecio = "cliente"
	TipoVolumen     TipoPrecio = "volumen"
	TipoCategoria   TipoPrecio = "categoria"
	TipoEstacional  TipoPrecio = "estacional"
	TipoPromocional TipoPrecio = "promocional"
)

// TiposPrecio lista todos los tipos, en el orden en que se reportan
var TiposPrecio = []TipoPrecio{
	TipoBase, TipoCliente, TipoVolumen, TipoCategoria, TipoEstacional, TipoPromocional,
}

// EstadoPrecio es el estado administrativo de una regla
type EstadoPrecio string

const (
	EstadoActivo     EstadoPrecio = "activo"
	EstadoInactivo   EstadoPrecio = "inactivo"
	EstadoExpirado   EstadoPrecio = "expirado"
	EstadoSuspendido EstadoPrecio = "suspendido"
)

// EstadosPrecio lista todos los estados posibles
var EstadosPrecio = []EstadoPrecio{
	EstadoActivo, EstadoInactivo, EstadoExpirado, EstadoSuspendido,
}

// PrecioProducto es una regla de precio sobre un producto puntual.
// Las reglas tipo "cliente" llevan cliente_id y son las de mayor
// precedencia en la resolución.
type PrecioProducto struct {
	ID         int64        `json:"id"`
	ProductoID int64        `json:"producto_id"`
	Tipo       TipoPrecio   `json:"tipo"`
	Estado     EstadoPrecio `json:"estado"`

	// Valores del precio. Exactamente uno de precio_especial,
	// descuento_porcentaje o descuento_monto define el ajuste.
	PrecioBase          decimal.Decimal  `json:"precio_base"`
	PrecioEspecial      *decimal.Decimal `json:"precio_especial,omitempty"`
	DescuentoPorcentaje *decimal.Decimal `json:"descuento_porcentaje,omitempty"`
	DescuentoMonto      *decimal.Decimal `json:"descuento_monto,omitempty"`

	// Condiciones de aplicación
	ClienteID      *int64           `json:"cliente_id,omitempty"`
	CategoriaID    *int64           `json:"categoria_id,omitempty"`
	CantidadMinima *decimal.Decimal `json:"cantidad_minima,omitempty"`
	CantidadMaxima *decimal.Decimal `json:"cantidad_maxima,omitempty"`

	// Vigencia
	FechaInicio time.Time  `json:"fecha_inicio"`
	FechaFin    *time.Time `json:"fecha_fin,omitempty"`

	// Metadatos
	Nombre             *string    `json:"nombre,omitempty"`
	Descripcion        *string    `json:"descripcion,omitempty"`
	CreadoPor          *int64     `json:"creado_por,omitempty"`
	FechaCreacion      time.Time  `json:"fecha_creacion"`
	FechaActualizacion *time.Time `json:"fecha_actualizacion,omitempty"`
	Activo             bool       `json:"activo"`

	// 1=alta, 2=media, 3=baja
	Prioridad int `json:"prioridad"`
}

// PrecioVolumen es una regla escalonada por cantidad comprada.
// El tramo [cantidad_minima, cantidad_maxima] es inclusivo en ambos
// extremos; cantidad_maxima nula significa tramo abierto.
type PrecioVolumen struct {
	ID         int64 `json:"id"`
	ProductoID int64 `json:"producto_id"`

	CantidadMinima      decimal.Decimal  `json:"cantidad_minima"`
	CantidadMaxima      *decimal.Decimal `json:"cantidad_maxima,omitempty"`
	DescuentoPorcentaje *decimal.Decimal `json:"descuento_porcentaje,omitempty"`
	DescuentoMonto      *decimal.Decimal `json:"descuento_monto,omitempty"`
	PrecioEspecial      *decimal.Decimal `json:"precio_especial,omitempty"`

	ClienteID   *int64 `json:"cliente_id,omitempty"`
	CategoriaID *int64 `json:"categoria_id,omitempty"`

	FechaInicio time.Time  `json:"fecha_inicio"`
	FechaFin    *time.Time `json:"fecha_fin,omitempty"`

	Nombre        *string   `json:"nombre,omitempty"`
	Descripcion   *string   `json:"descripcion,omitempty"`
	CreadoPor     *int64    `json:"creado_por,omitempty"`
	FechaCreacion time.Time `json:"fecha_creacion"`
	Activo        bool      `json:"activo"`
	Prioridad     int       `json:"prioridad"`
}

// PrecioCategoria ajusta el precio de toda una categoría.
// No participa de la resolución por producto: se consulta sólo
// por listado para armar catálogos.
type PrecioCategoria struct {
	ID          int64 `json:"id"`
	CategoriaID int64 `json:"categoria_id"`

	DescuentoPorcentaje *decimal.Decimal `json:"descuento_porcentaje,omitempty"`
	DescuentoMonto      *decimal.Decimal `json:"descuento_monto,omitempty"`
	Multiplicador       *decimal.Decimal `json:"multiplicador,omitempty"`

	ClienteID  *int64 `json:"cliente_id,omitempty"`
	ProductoID *int64 `json:"producto_id,omitempty"`

	FechaInicio time.Time  `json:"fecha_inicio"`
	FechaFin    *time.Time `json:"fecha_fin,omitempty"`

	Nombre        *string   `json:"nombre,omitempty"`
	Descripcion   *string   `json:"descripcion,omitempty"`
	CreadoPor     *int64    `json:"creado_por,omitempty"`
	FechaCreacion time.Time `json:"fecha_creacion"`
	Activo        bool      `json:"activo"`
	Prioridad     int       `json:"prioridad"`
}

// PrecioEstacional es una regla de temporada. A diferencia del resto,
// la vigencia se maneja con fecha calendario (DATE) y ambos extremos
// son obligatorios.
type PrecioEstacional struct {
	ID         int64 `json:"id"`
	ProductoID int64 `json:"producto_id"`

	NombreTemporada     string           `json:"nombre_temporada"`
	DescuentoPorcentaje *decimal.Decimal `json:"descuento_porcentaje,omitempty"`
	DescuentoMonto      *decimal.Decimal `json:"descuento_monto,omitempty"`
	PrecioEspecial      *decimal.Decimal `json:"precio_especial,omitempty"`

	ClienteID   *int64 `json:"cliente_id,omitempty"`
	CategoriaID *int64 `json:"categoria_id,omitempty"`

	FechaInicio time.Time `json:"fecha_inicio"`
	FechaFin    time.Time `json:"fecha_fin"`

	Descripcion   *string   `json:"descripcion,omitempty"`
	CreadoPor     *int64    `json:"creado_por,omitempty"`
	FechaCreacion time.Time `json:"fecha_creacion"`
	Activo        bool      `json:"activo"`
	Prioridad     int       `json:"prioridad"`
}

// PrecioHistorial es el registro inmutable de cambios de precio
type PrecioHistorial struct {
	ID         int64 `json:"id"`
	ProductoID int64 `json:"producto_id"`

	// 'creacion', 'actualizacion', 'activacion', 'desactivacion'
	TipoCambio        string           `json:"tipo_cambio"`
	PrecioAnterior    *decimal.Decimal `json:"precio_anterior,omitempty"`
	PrecioNuevo       *decimal.Decimal `json:"precio_nuevo,omitempty"`
	DescuentoAnterior *decimal.Decimal `json:"descuento_anterior,omitempty"`
	DescuentoNuevo    *decimal.Decimal `json:"descuento_nuevo,omitempty"`

	// Referencia a la regla modificada
	PrecioID    *int64  `json:"precio_id,omitempty"`
	PrecioTabla *string `json:"precio_tabla,omitempty"`

	Motivo      *string   `json:"motivo,omitempty"`
	UsuarioID   *int64    `json:"usuario_id,omitempty"`
	FechaCambio time.Time `json:"fecha_cambio"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	UserAgent   *string   `json:"user_agent,omitempty"`
}

// PrecioAplicado documenta una resolución que modificó el precio base.
// Se persiste sólo cuando precio_final difiere del base.
type PrecioAplicado struct {
	ID         int64  `json:"id"`
	VentaID    int64  `json:"venta_id"`
	ProductoID int64  `json:"producto_id"`
	ClienteID  *int64 `json:"cliente_id,omitempty"`

	PrecioBase          decimal.Decimal  `json:"precio_base"`
	PrecioFinal         decimal.Decimal  `json:"precio_final"`
	DescuentoAplicado   *decimal.Decimal `json:"descuento_aplicado,omitempty"`
	PorcentajeDescuento *decimal.Decimal `json:"porcentaje_descuento,omitempty"`

	TipoPrecio  TipoPrecio `json:"tipo_precio"`
	PrecioID    *int64     `json:"precio_id,omitempty"`
	PrecioTabla *string    `json:"precio_tabla,omitempty"`

	Cantidad         decimal.Decimal `json:"cantidad"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	FechaAplicacion  time.Time       `json:"fecha_aplicacion"`
}

// Vigente indica si la regla está dentro de su ventana de vigencia
func (p *PrecioProducto) Vigente(ahora time.Time) bool {
	if p.FechaInicio.After(ahora) {
		return false
	}
	if p.FechaFin != nil && p.FechaFin.Before(ahora) {
		return false
	}
	return true
}

// CubreCantidad indica si la cantidad cae dentro del tramo (inclusivo)
func (v *PrecioVolumen) CubreCantidad(cantidad decimal.Decimal) bool {
	if cantidad.LessThan(v.CantidadMinima) {
		return false
	}
	if v.CantidadMaxima != nil && cantidad.GreaterThan(*v.CantidadMaxima) {
		return false
	}
	return true
}
