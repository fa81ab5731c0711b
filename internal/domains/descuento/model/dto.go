package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var codigoPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CrearDescuentoRequest crea un nuevo cupón de descuento
type CrearDescuentoRequest struct {
	Codigo         string   `json:"codigo"`
	Nombre         string   `json:"nombre"`
	Descripcion    *string  `json:"descripcion"`
	Tipo           string   `json:"tipo"`
	Valor          float64  `json:"valor"`
	ValorMinimo    *float64 `json:"valor_minimo"`
	ValorMaximo    *float64 `json:"valor_maximo"`
	LimiteUsos     *int     `json:"limite_usos"`
	UsosPorCliente *int     `json:"usos_por_cliente"`
	FechaInicio    string   `json:"fecha_inicio"`
	FechaFin       *string  `json:"fecha_fin"`
	AplicaEnvio    bool     `json:"aplica_envio"`
	AplicaImpuestos *bool   `json:"aplica_impuestos"`
	ProductosIDs   []int64  `json:"productos_ids"`
	ClientesIDs    []int64  `json:"clientes_ids"`
	CategoriasIDs  []int64  `json:"categorias_ids"`
	NotasInternas  *string  `json:"notas_internas"`
}

// NormalizarCodigo devuelve el código en mayúsculas y sin espacios
func (r *CrearDescuentoRequest) NormalizarCodigo() string {
	return strings.ToUpper(strings.TrimSpace(r.Codigo))
}

func (r *CrearDescuentoRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Codigo,
			validation.Required.Error("El código es obligatorio"),
			validation.Length(1, 50),
			validation.Match(codigoPattern).Error("El código solo admite letras, números, guion y guion bajo"),
		),
		validation.Field(&r.Nombre,
			validation.Required.Error("El nombre es obligatorio"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Tipo,
			validation.Required,
			validation.In(toInterfaces(TiposDescuento)...).Error("Tipo de descuento no reconocido"),
		),
		validation.Field(&r.Valor,
			validation.Required.Error("El valor es obligatorio"),
			validation.Min(0.0).Exclusive().Error("El valor debe ser mayor a cero"),
			validation.By(r.validarValorPorTipo),
		),
		validation.Field(&r.ValorMinimo, validation.Min(0.0)),
		validation.Field(&r.ValorMaximo, validation.Min(0.0)),
		validation.Field(&r.LimiteUsos, validation.Min(1)),
		validation.Field(&r.UsosPorCliente, validation.Min(1)),
		validation.Field(&r.FechaInicio,
			validation.Required.Error("La fecha de inicio es obligatoria"),
			validation.Date(time.RFC3339),
		),
		validation.Field(&r.FechaFin,
			validation.Date(time.RFC3339),
			validation.By(r.validarFechaFin),
		),
	)
}

// Los descuentos porcentuales no pueden superar el 100%
func (r *CrearDescuentoRequest) validarValorPorTipo(value interface{}) error {
	if r.Tipo == TipoPorcentaje && r.Valor > 100 {
		return validation.NewError("porcentaje_invalido", "El porcentaje no puede ser mayor a 100")
	}
	if r.Tipo == TipoDescuentoVolumen && r.Valor > 100 {
		return validation.NewError("porcentaje_invalido", "El porcentaje de descuento por volumen no puede ser mayor a 100")
	}
	return nil
}

func (r *CrearDescuentoRequest) validarFechaFin(value interface{}) error {
	if r.FechaFin == nil || *r.FechaFin == "" {
		return nil
	}
	inicio, err := time.Parse(time.RFC3339, r.FechaInicio)
	if err != nil {
		return nil
	}
	fin, err := time.Parse(time.RFC3339, *r.FechaFin)
	if err != nil {
		return nil
	}
	if !fin.After(inicio) {
		return validation.NewError("fechas_invalidas", "La fecha de fin debe ser posterior a la fecha de inicio")
	}
	return nil
}

// ActualizarDescuentoRequest actualiza parcialmente un cupón
type ActualizarDescuentoRequest struct {
	Nombre          *string  `json:"nombre"`
	Descripcion     *string  `json:"descripcion"`
	Valor           *float64 `json:"valor"`
	ValorMinimo     *float64 `json:"valor_minimo"`
	ValorMaximo     *float64 `json:"valor_maximo"`
	LimiteUsos      *int     `json:"limite_usos"`
	UsosPorCliente  *int     `json:"usos_por_cliente"`
	FechaInicio     *string  `json:"fecha_inicio"`
	FechaFin        *string  `json:"fecha_fin"`
	Estado          *string  `json:"estado"`
	EsActivo        *bool    `json:"es_activo"`
	AplicaEnvio     *bool    `json:"aplica_envio"`
	AplicaImpuestos *bool    `json:"aplica_impuestos"`
	ProductosIDs    []int64  `json:"productos_ids"`
	ClientesIDs     []int64  `json:"clientes_ids"`
	CategoriasIDs   []int64  `json:"categorias_ids"`
	NotasInternas   *string  `json:"notas_internas"`
}

func (r *ActualizarDescuentoRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Nombre, validation.Length(1, 255)),
		validation.Field(&r.Valor, validation.Min(0.0).Exclusive()),
		validation.Field(&r.ValorMinimo, validation.Min(0.0)),
		validation.Field(&r.ValorMaximo, validation.Min(0.0)),
		validation.Field(&r.LimiteUsos, validation.Min(1)),
		validation.Field(&r.UsosPorCliente, validation.Min(1)),
		validation.Field(&r.FechaInicio, validation.Date(time.RFC3339)),
		validation.Field(&r.FechaFin, validation.Date(time.RFC3339)),
		validation.Field(&r.Estado, validation.In(toInterfaces(EstadosDescuento)...)),
	)
}

// AplicarDescuentoRequest valida un código contra una compra concreta
type AplicarDescuentoRequest struct {
	Codigo       string  `json:"codigo"`
	MontoTotal   float64 `json:"monto_total"`
	ProductosIDs []int64 `json:"productos_ids"`
	ClienteID    *int64  `json:"cliente_id"`
}

func (r *AplicarDescuentoRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Codigo, validation.Required.Error("El código es obligatorio")),
		validation.Field(&r.MontoTotal,
			validation.Required.Error("El monto total es obligatorio"),
			validation.Min(0.0).Exclusive().Error("El monto total debe ser mayor a cero"),
		),
		validation.Field(&r.ProductosIDs, validation.Required.Error("Los productos de la compra son obligatorios")),
	)
}

// RegistrarUsoRequest deja constancia del uso de un cupón
type RegistrarUsoRequest struct {
	DescuentoID    int64   `json:"descuento_id"`
	ClienteID      *int64  `json:"cliente_id"`
	VentaID        *int64  `json:"venta_id"`
	MontoOriginal  float64 `json:"monto_original"`
	MontoDescuento float64 `json:"monto_descuento"`
	MontoFinal     float64 `json:"monto_final"`
	UserAgent      *string `json:"user_agent"`
}

func (r *RegistrarUsoRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DescuentoID, validation.Required, validation.Min(1)),
		validation.Field(&r.MontoOriginal, validation.Min(0.0)),
		validation.Field(&r.MontoDescuento, validation.Min(0.0)),
		validation.Field(&r.MontoFinal, validation.Min(0.0)),
	)
}

// CrearPromocionRequest crea una campaña sin código
type CrearPromocionRequest struct {
	Nombre          string   `json:"nombre"`
	Descripcion     *string  `json:"descripcion"`
	Tipo            string   `json:"tipo"`
	Valor           float64  `json:"valor"`
	CondicionMinima *float64 `json:"condicion_minima"`
	FechaInicio     string   `json:"fecha_inicio"`
	FechaFin        *string  `json:"fecha_fin"`
	ProductosIDs    []int64  `json:"productos_ids"`
	ClientesIDs     []int64  `json:"clientes_ids"`
}

func (r *CrearPromocionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Nombre, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Tipo,
			validation.Required,
			validation.In(toInterfaces(TiposDescuento)...).Error("Tipo de promoción no reconocido"),
		),
		validation.Field(&r.Valor, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&r.CondicionMinima, validation.Min(0.0)),
		validation.Field(&r.FechaInicio, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&r.FechaFin, validation.Date(time.RFC3339)),
	)
}

// DescuentoResultado es el veredicto de aplicar un código a una compra
type DescuentoResultado struct {
	Aplicable      bool             `json:"aplicable"`
	MontoDescuento *decimal.Decimal `json:"monto_descuento,omitempty"`
	MontoFinal     decimal.Decimal  `json:"monto_final"`
	Mensaje        string           `json:"mensaje"`
	Descuento      *Descuento       `json:"descuento,omitempty"`
}

// DescuentoFiltros acota el listado de cupones
type DescuentoFiltros struct {
	Codigo       *string
	Tipo         *string
	Estado       *string
	EsActivo     *bool
	FechaDesde   *time.Time
	FechaHasta   *time.Time
	ClienteID    *int64
	ProductoID   *int64
	SoloVigentes bool
}

// TopDescuento agrega los usos de un cupón
type TopDescuento struct {
	Codigo           string          `json:"codigo"`
	Nombre           string          `json:"nombre"`
	Usos             int64           `json:"usos"`
	MontoDescuentado decimal.Decimal `json:"monto_descuentado"`
}

// UsoMensual agrega los usos de un mes calendario
type UsoMensual struct {
	Mes              string          `json:"mes"`
	Usos             int64           `json:"usos"`
	MontoDescuentado decimal.Decimal `json:"monto_descuentado"`
}

// DescuentoEstadisticas resume la actividad de los cupones
type DescuentoEstadisticas struct {
	TotalDescuentos       int64            `json:"total_descuentos"`
	DescuentosActivos     int64            `json:"descuentos_activos"`
	DescuentosExpirados   int64            `json:"descuentos_expirados"`
	TotalUsos             int64            `json:"total_usos"`
	MontoTotalDescuentado decimal.Decimal  `json:"monto_total_descuentado"`
	DescuentosPorTipo     map[string]int64 `json:"descuentos_por_tipo"`
	TopDescuentos         []TopDescuento   `json:"top_descuentos"`
	UsosPorMes            []UsoMensual     `json:"usos_por_mes"`
}

// ResultadoBarrido cuenta las transiciones de estado del barrido periódico
type ResultadoBarrido struct {
	Expirados  int64 `json:"expirados"`
	Reactivados int64 `json:"reactivados"`
	Total      int64 `json:"total"`
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
