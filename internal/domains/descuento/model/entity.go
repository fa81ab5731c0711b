package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de descuentos disponibles
const (
	TipoPorcentaje        = "porcentaje"
	TipoMontoFijo         = "monto_fijo"
	TipoDescuentoVolumen  = "descuento_volumen"
	TipoDescuentoCliente  = "descuento_cliente"
	TipoPromocionTemporal = "promocion_temporal"
)

// TiposDescuento lista todos los tipos reconocidos
var TiposDescuento = []string{
	TipoPorcentaje,
	TipoMontoFijo,
	TipoDescuentoVolumen,
	TipoDescuentoCliente,
	TipoPromocionTemporal,
}

// Estados de los descuentos
const (
	EstadoActivo   = "activo"
	EstadoInactivo = "inactivo"
	EstadoExpirado = "expirado"
	EstadoAgotado  = "agotado"
)

// EstadosDescuento lista todos los estados reconocidos
var EstadosDescuento = []string{
	EstadoActivo,
	EstadoInactivo,
	EstadoExpirado,
	EstadoAgotado,
}

// Descuento representa un cupón con sus límites y restricciones.
// Las listas de restricción se guardan como columnas bigint[] nativas;
// una lista vacía (nil) significa que el cupón es global.
type Descuento struct {
	ID          int64   `json:"id"`
	Codigo      string  `json:"codigo"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion,omitempty"`

	Tipo        string           `json:"tipo"`
	Valor       decimal.Decimal  `json:"valor"`
	ValorMinimo *decimal.Decimal `json:"valor_minimo,omitempty"`
	ValorMaximo *decimal.Decimal `json:"valor_maximo,omitempty"`

	LimiteUsos     *int  `json:"limite_usos,omitempty"`
	UsosPorCliente *int  `json:"usos_por_cliente,omitempty"`
	UsosActuales   int   `json:"usos_actuales"`

	FechaInicio   time.Time  `json:"fecha_inicio"`
	FechaFin      *time.Time `json:"fecha_fin,omitempty"`
	FechaCreacion time.Time  `json:"fecha_creacion"`

	Estado          string `json:"estado"`
	EsActivo        bool   `json:"es_activo"`
	AplicaEnvio     bool   `json:"aplica_envio"`
	AplicaImpuestos bool   `json:"aplica_impuestos"`

	ProductosIDs  []int64 `json:"productos_ids,omitempty"`
	ClientesIDs   []int64 `json:"clientes_ids,omitempty"`
	CategoriasIDs []int64 `json:"categorias_ids,omitempty"`

	CreadoPor     *int64  `json:"creado_por,omitempty"`
	NotasInternas *string `json:"notas_internas,omitempty"`
}

// Vigente indica si el descuento está dentro de su ventana temporal
func (d *Descuento) Vigente(ahora time.Time) bool {
	if d.FechaInicio.After(ahora) {
		return false
	}
	if d.FechaFin != nil && d.FechaFin.Before(ahora) {
		return false
	}
	return true
}

// Agotado indica si el descuento alcanzó su límite total de usos
func (d *Descuento) Agotado() bool {
	return d.LimiteUsos != nil && d.UsosActuales >= *d.LimiteUsos
}

// DescuentoUso es un asiento del libro mayor de usos de cupones
type DescuentoUso struct {
	ID          int64  `json:"id"`
	DescuentoID int64  `json:"descuento_id"`
	ClienteID   *int64 `json:"cliente_id,omitempty"`
	VentaID     *int64 `json:"venta_id,omitempty"`

	MontoOriginal  decimal.Decimal `json:"monto_original"`
	MontoDescuento decimal.Decimal `json:"monto_descuento"`
	MontoFinal     decimal.Decimal `json:"monto_final"`

	FechaUso  time.Time `json:"fecha_uso"`
	IPCliente *string   `json:"ip_cliente,omitempty"`
	UserAgent *string   `json:"user_agent,omitempty"`
}

// Promocion es una campaña sin código, aplicada por reglas
type Promocion struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion,omitempty"`

	Tipo            string           `json:"tipo"`
	Valor           decimal.Decimal  `json:"valor"`
	CondicionMinima *decimal.Decimal `json:"condicion_minima,omitempty"`

	FechaInicio   time.Time  `json:"fecha_inicio"`
	FechaFin      *time.Time `json:"fecha_fin,omitempty"`
	FechaCreacion time.Time  `json:"fecha_creacion"`

	Estado   string `json:"estado"`
	EsActivo bool   `json:"es_activo"`

	ProductosIDs []int64 `json:"productos_ids,omitempty"`
	ClientesIDs  []int64 `json:"clientes_ids,omitempty"`

	CreadoPor *int64 `json:"creado_por,omitempty"`
}
