package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"comercial-backend/internal/domains/precio/model"
	"comercial-backend/internal/domains/precio/repository"
	"comercial-backend/internal/shared"
	"comercial-backend/internal/shared/utils"
	"comercial-backend/pkg/logger"
)

// AuditPublisher encola entradas de auditoría hacia el worker.
// Puede ser nil: la auditoría asíncrona es best-effort.
type AuditPublisher interface {
	EncolarAuditoria(ctx context.Context, p shared.RegistrarAuditoriaPayload) error
}

// PrecioService resuelve el precio dinámico y administra las reglas
type PrecioService struct {
	repo       repository.PrecioRepository
	calculator *PrecioCalculator
	audit      AuditPublisher
}

func NewPrecioService(repo repository.PrecioRepository, audit AuditPublisher) ServiceInterface {
	return &PrecioService{
		repo:       repo,
		calculator: NewPrecioCalculator(),
		audit:      audit,
	}
}

// -------------------------------------------------------------------
// RESOLUCIÓN
// -------------------------------------------------------------------

// resolucion es el resultado interno del motor, antes de persistir nada
type resolucion struct {
	precioBase  decimal.Decimal
	precioFinal decimal.Decimal
	descuento   decimal.Decimal
	porcentaje  decimal.Decimal
	tipo        model.TipoPrecio
	precioID    *int64
	mensaje     string
}

// resolver evalúa las reglas en orden de precedencia:
// 1. precio por cliente
// 2. precio por volumen
// 3. precio estacional
// El primer ajuste que mueve el precio corta la cadena.
func (s *PrecioService) resolver(
	ctx context.Context,
	productoID int64,
	clienteID *int64,
	cantidad decimal.Decimal,
	precioBase decimal.Decimal,
) (*resolucion, error) {
	ahora := time.Now().UTC()
	hoy := ahora.Truncate(24 * time.Hour)

	res := &resolucion{
		precioBase:  precioBase,
		precioFinal: precioBase,
		descuento:   decimal.Zero,
		porcentaje:  decimal.Zero,
		tipo:        model.TipoBase,
		mensaje:     "Precio base aplicado",
	}

	// 1. Precio por cliente (mayor precedencia)
	if clienteID != nil {
		regla, err := s.repo.BuscarPrecioCliente(ctx, productoID, *clienteID, ahora)
		if err != nil {
			return nil, err
		}
		// Una regla con precio especial por encima del base está mal
		// cargada: se saltea en vez de encarecer la venta.
		if regla != nil && !especialInvalido(regla.PrecioEspecial, precioBase) {
			calc := s.calculator.CalcularPrecioFinal(precioBase, regla.PrecioEspecial, regla.DescuentoPorcentaje, regla.DescuentoMonto)
			res.aplicar(calc, model.TipoCliente, regla.ID)
			res.mensaje = fmt.Sprintf("Precio especial por cliente aplicado (ID: %d)", regla.ID)
		}
	}

	// 2. Precio por volumen
	if res.precioFinal.Equal(precioBase) {
		regla, err := s.repo.BuscarPrecioVolumen(ctx, productoID, cantidad, ahora)
		if err != nil {
			return nil, err
		}
		if regla != nil && !especialInvalido(regla.PrecioEspecial, precioBase) {
			calc := s.calculator.CalcularPrecioFinal(precioBase, regla.PrecioEspecial, regla.DescuentoPorcentaje, regla.DescuentoMonto)
			res.aplicar(calc, model.TipoVolumen, regla.ID)
			res.mensaje = fmt.Sprintf("Precio por volumen aplicado (ID: %d)", regla.ID)
		}
	}

	// 3. Precio estacional
	if res.precioFinal.Equal(precioBase) {
		regla, err := s.repo.BuscarPrecioEstacional(ctx, productoID, hoy)
		if err != nil {
			return nil, err
		}
		if regla != nil && !especialInvalido(regla.PrecioEspecial, precioBase) {
			calc := s.calculator.CalcularPrecioFinal(precioBase, regla.PrecioEspecial, regla.DescuentoPorcentaje, regla.DescuentoMonto)
			res.aplicar(calc, model.TipoEstacional, regla.ID)
			res.mensaje = fmt.Sprintf("Precio estacional aplicado (ID: %d)", regla.ID)
		}
	}

	return res, nil
}

func (r *resolucion) aplicar(calc ResultadoCalculo, tipo model.TipoPrecio, precioID int64) {
	r.precioFinal = calc.PrecioFinal
	r.descuento = calc.DescuentoAplicado
	r.porcentaje = calc.PorcentajeDescuento
	r.tipo = tipo
	r.precioID = &precioID
}

func especialInvalido(especial *decimal.Decimal, base decimal.Decimal) bool {
	return especial != nil && especial.GreaterThanOrEqual(base)
}

func (r *resolucion) respuesta() *model.AplicarPrecioResponse {
	resp := &model.AplicarPrecioResponse{
		Aplicado:    !r.precioFinal.Equal(r.precioBase),
		PrecioBase:  utils.RoundMoney(r.precioBase),
		PrecioFinal: utils.RoundMoney(r.precioFinal),
		Mensaje:     r.mensaje,
	}

	if resp.Aplicado {
		descuento := utils.RoundMoney(r.descuento)
		porcentaje := utils.RoundMoney(r.porcentaje)
		tipo := r.tipo
		resp.DescuentoAplicado = &descuento
		resp.PorcentajeDescuento = &porcentaje
		resp.TipoPrecio = &tipo
		resp.PrecioID = r.precioID
	}

	return resp
}

// AplicarPrecioDinamico resuelve el mejor precio para una línea de venta
// y, si hubo ajuste, deja exactamente un registro en precios_aplicados.
func (s *PrecioService) AplicarPrecioDinamico(ctx context.Context, req *model.AplicarPrecioRequest) (*model.AplicarPrecioResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	precioBase := decimal.NewFromFloat(req.PrecioBase)
	cantidad := decimal.NewFromFloat(req.Cantidad)

	res, err := s.resolver(ctx, req.ProductoID, req.ClienteID, cantidad, precioBase)
	if err != nil {
		return nil, fmt.Errorf("aplicar precio dinamico: %w", err)
	}

	// Sólo las resoluciones que movieron el precio se documentan
	if !res.precioFinal.Equal(precioBase) {
		tabla := fmt.Sprintf("precios_%s", res.tipo)
		descuento := utils.RoundMoney(res.descuento)
		porcentaje := utils.RoundMoney(res.porcentaje)

		aplicado := &model.PrecioAplicado{
			VentaID:             req.VentaID,
			ProductoID:          req.ProductoID,
			ClienteID:           req.ClienteID,
			PrecioBase:          utils.RoundMoney(precioBase),
			PrecioFinal:         utils.RoundMoney(res.precioFinal),
			DescuentoAplicado:   &descuento,
			PorcentajeDescuento: &porcentaje,
			TipoPrecio:          res.tipo,
			PrecioID:            res.precioID,
			PrecioTabla:         &tabla,
			Cantidad:            cantidad,
			Subtotal:            utils.RoundMoney(res.precioFinal.Mul(cantidad)),
		}

		if err := s.repo.GuardarPrecioAplicado(ctx, aplicado); err != nil {
			return nil, fmt.Errorf("aplicar precio dinamico: %w", err)
		}
	}

	return res.respuesta(), nil
}

// SimularPrecio corre el mismo motor de resolución sin persistir nada
func (s *PrecioService) SimularPrecio(ctx context.Context, req *model.SimularPrecioRequest) (*model.AplicarPrecioResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	precioBase := decimal.NewFromFloat(req.PrecioBase)
	cantidad := decimal.NewFromFloat(req.Cantidad)

	res, err := s.resolver(ctx, req.ProductoID, req.ClienteID, cantidad, precioBase)
	if err != nil {
		return nil, fmt.Errorf("simular precio: %w", err)
	}

	return res.respuesta(), nil
}

// -------------------------------------------------------------------
// REGLAS DE PRODUCTO
// -------------------------------------------------------------------

func (s *PrecioService) CrearPrecioProducto(ctx context.Context, req *model.CrearPrecioProductoRequest, creadoPor *int64) (*model.PrecioProducto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fechaInicio, fechaFin, err := parseVigencia(req.FechaInicio, req.FechaFin)
	if err != nil {
		return nil, err
	}

	precio := &model.PrecioProducto{
		ProductoID:          req.ProductoID,
		Tipo:                model.TipoPrecio(req.Tipo),
		Estado:              model.EstadoActivo,
		PrecioBase:          decimal.NewFromFloat(req.PrecioBase),
		PrecioEspecial:      utils.ParseFloatToDecimal(req.PrecioEspecial),
		DescuentoPorcentaje: utils.ParseFloatToDecimal(req.DescuentoPorcentaje),
		DescuentoMonto:      utils.ParseFloatToDecimal(req.DescuentoMonto),
		ClienteID:           req.ClienteID,
		CategoriaID:         req.CategoriaID,
		CantidadMinima:      utils.ParseFloatToDecimal(req.CantidadMinima),
		CantidadMaxima:      utils.ParseFloatToDecimal(req.CantidadMaxima),
		FechaInicio:         fechaInicio,
		FechaFin:            fechaFin,
		Nombre:              req.Nombre,
		Descripcion:         req.Descripcion,
		CreadoPor:           creadoPor,
		Activo:              true,
		Prioridad:           req.Prioridad,
	}

	if err := s.repo.CrearPrecioProducto(ctx, precio); err != nil {
		return nil, err
	}

	s.registrarHistorial(ctx, precio.ProductoID, "creacion",
		nil, precio.PrecioEspecial, nil, precio.DescuentoPorcentaje,
		precio.ID, "precios_producto", creadoPor, "Precio creado")

	s.auditar(ctx, creadoPor, "crear_precio_producto", precio.ID)

	return precio, nil
}

func (s *PrecioService) ListarPreciosProducto(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioProducto, error) {
	return s.repo.ListarPreciosProducto(ctx, filtros, skip, normalizarLimite(limit))
}

func (s *PrecioService) ActualizarPrecioProducto(ctx context.Context, id int64, req *model.ActualizarPrecioProductoRequest, usuarioID *int64) (*model.PrecioProducto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	precio, err := s.repo.ObtenerPrecioProducto(ctx, id)
	if err != nil {
		return nil, err
	}

	// Valores previos para el historial
	precioAnterior := precio.PrecioEspecial
	descuentoAnterior := precio.DescuentoPorcentaje

	if req.PrecioBase != nil {
		precio.PrecioBase = decimal.NewFromFloat(*req.PrecioBase)
	}
	if req.PrecioEspecial != nil {
		precio.PrecioEspecial = utils.ParseFloatToDecimal(req.PrecioEspecial)
	}
	if req.DescuentoPorcentaje != nil {
		precio.DescuentoPorcentaje = utils.ParseFloatToDecimal(req.DescuentoPorcentaje)
	}
	if req.DescuentoMonto != nil {
		precio.DescuentoMonto = utils.ParseFloatToDecimal(req.DescuentoMonto)
	}
	if req.CantidadMinima != nil {
		precio.CantidadMinima = utils.ParseFloatToDecimal(req.CantidadMinima)
	}
	if req.CantidadMaxima != nil {
		precio.CantidadMaxima = utils.ParseFloatToDecimal(req.CantidadMaxima)
	}
	if req.FechaInicio != nil {
		inicio, err := time.Parse(time.RFC3339, *req.FechaInicio)
		if err != nil {
			return nil, fmt.Errorf("fecha_inicio inválida: %w", err)
		}
		precio.FechaInicio = inicio
	}
	if req.FechaFin != nil {
		fin, err := time.Parse(time.RFC3339, *req.FechaFin)
		if err != nil {
			return nil, fmt.Errorf("fecha_fin inválida: %w", err)
		}
		precio.FechaFin = &fin
	}
	if req.Nombre != nil {
		precio.Nombre = req.Nombre
	}
	if req.Descripcion != nil {
		precio.Descripcion = req.Descripcion
	}
	if req.Estado != nil {
		precio.Estado = model.EstadoPrecio(*req.Estado)
		precio.Activo = precio.Estado == model.EstadoActivo
	}
	if req.Activo != nil {
		precio.Activo = *req.Activo
	}
	if req.Prioridad != nil {
		precio.Prioridad = *req.Prioridad
	}

	if err := s.repo.ActualizarPrecioProducto(ctx, precio); err != nil {
		return nil, err
	}

	motivo := "Precio actualizado"
	if req.Motivo != nil {
		motivo = *req.Motivo
	}
	s.registrarHistorial(ctx, precio.ProductoID, "actualizacion",
		precioAnterior, precio.PrecioEspecial, descuentoAnterior, precio.DescuentoPorcentaje,
		precio.ID, "precios_producto", usuarioID, motivo)

	s.auditar(ctx, usuarioID, "actualizar_precio_producto", precio.ID)

	return precio, nil
}

// -------------------------------------------------------------------
// REGLAS POR VOLUMEN
// -------------------------------------------------------------------

func (s *PrecioService) CrearPrecioVolumen(ctx context.Context, req *model.CrearPrecioVolumenRequest, creadoPor *int64) (*model.PrecioVolumen, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fechaInicio, fechaFin, err := parseVigencia(req.FechaInicio, req.FechaFin)
	if err != nil {
		return nil, err
	}

	precio := &model.PrecioVolumen{
		ProductoID:          req.ProductoID,
		CantidadMinima:      decimal.NewFromFloat(req.CantidadMinima),
		CantidadMaxima:      utils.ParseFloatToDecimal(req.CantidadMaxima),
		DescuentoPorcentaje: utils.ParseFloatToDecimal(req.DescuentoPorcentaje),
		DescuentoMonto:      utils.ParseFloatToDecimal(req.DescuentoMonto),
		PrecioEspecial:      utils.ParseFloatToDecimal(req.PrecioEspecial),
		ClienteID:           req.ClienteID,
		CategoriaID:         req.CategoriaID,
		FechaInicio:         fechaInicio,
		FechaFin:            fechaFin,
		Nombre:              req.Nombre,
		Descripcion:         req.Descripcion,
		CreadoPor:           creadoPor,
		Activo:              true,
		Prioridad:           req.Prioridad,
	}

	if err := s.repo.CrearPrecioVolumen(ctx, precio); err != nil {
		return nil, err
	}

	s.auditar(ctx, creadoPor, "crear_precio_volumen", precio.ID)

	return precio, nil
}

func (s *PrecioService) ListarPreciosVolumen(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioVolumen, error) {
	return s.repo.ListarPreciosVolumen(ctx, filtros, skip, normalizarLimite(limit))
}

// -------------------------------------------------------------------
// REGLAS POR CATEGORÍA
// -------------------------------------------------------------------

func (s *PrecioService) CrearPrecioCategoria(ctx context.Context, req *model.CrearPrecioCategoriaRequest, creadoPor *int64) (*model.PrecioCategoria, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fechaInicio, fechaFin, err := parseVigencia(req.FechaInicio, req.FechaFin)
	if err != nil {
		return nil, err
	}

	precio := &model.PrecioCategoria{
		CategoriaID:         req.CategoriaID,
		DescuentoPorcentaje: utils.ParseFloatToDecimal(req.DescuentoPorcentaje),
		DescuentoMonto:      utils.ParseFloatToDecimal(req.DescuentoMonto),
		Multiplicador:       utils.ParseFloatToDecimal(req.Multiplicador),
		ClienteID:           req.ClienteID,
		ProductoID:          req.ProductoID,
		FechaInicio:         fechaInicio,
		FechaFin:            fechaFin,
		Nombre:              req.Nombre,
		Descripcion:         req.Descripcion,
		CreadoPor:           creadoPor,
		Activo:              true,
		Prioridad:           req.Prioridad,
	}

	if err := s.repo.CrearPrecioCategoria(ctx, precio); err != nil {
		return nil, err
	}

	s.auditar(ctx, creadoPor, "crear_precio_categoria", precio.ID)

	return precio, nil
}

func (s *PrecioService) ListarPreciosCategoria(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioCategoria, error) {
	return s.repo.ListarPreciosCategoria(ctx, filtros, skip, normalizarLimite(limit))
}

// -------------------------------------------------------------------
// REGLAS ESTACIONALES
// -------------------------------------------------------------------

func (s *PrecioService) CrearPrecioEstacional(ctx context.Context, req *model.CrearPrecioEstacionalRequest, creadoPor *int64) (*model.PrecioEstacional, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Las temporadas van con fecha calendario, ambos extremos obligatorios
	fechaInicio, err := time.Parse("2006-01-02", req.FechaInicio)
	if err != nil {
		return nil, fmt.Errorf("fecha_inicio inválida: %w", err)
	}
	fechaFin, err := time.Parse("2006-01-02", req.FechaFin)
	if err != nil {
		return nil, fmt.Errorf("fecha_fin inválida: %w", err)
	}

	precio := &model.PrecioEstacional{
		ProductoID:          req.ProductoID,
		NombreTemporada:     req.NombreTemporada,
		DescuentoPorcentaje: utils.ParseFloatToDecimal(req.DescuentoPorcentaje),
		DescuentoMonto:      utils.ParseFloatToDecimal(req.DescuentoMonto),
		PrecioEspecial:      utils.ParseFloatToDecimal(req.PrecioEspecial),
		ClienteID:           req.ClienteID,
		CategoriaID:         req.CategoriaID,
		FechaInicio:         fechaInicio,
		FechaFin:            fechaFin,
		Descripcion:         req.Descripcion,
		CreadoPor:           creadoPor,
		Activo:              true,
		Prioridad:           req.Prioridad,
	}

	if err := s.repo.CrearPrecioEstacional(ctx, precio); err != nil {
		return nil, err
	}

	s.auditar(ctx, creadoPor, "crear_precio_estacional", precio.ID)

	return precio, nil
}

func (s *PrecioService) ListarPreciosEstacionales(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioEstacional, error) {
	return s.repo.ListarPreciosEstacionales(ctx, filtros, skip, normalizarLimite(limit))
}

// -------------------------------------------------------------------
// TRAZABILIDAD Y AGREGADOS
// -------------------------------------------------------------------

func (s *PrecioService) ObtenerHistorial(ctx context.Context, productoID *int64, skip, limit int) ([]*model.PrecioHistorial, error) {
	return s.repo.ListarHistorial(ctx, productoID, skip, normalizarLimite(limit))
}

func (s *PrecioService) ObtenerPreciosAplicados(ctx context.Context, ventaID int64) ([]*model.PrecioAplicado, error) {
	return s.repo.ListarPreciosAplicados(ctx, ventaID)
}

func (s *PrecioService) ObtenerResumen(ctx context.Context) (*model.PrecioResumen, error) {
	return s.repo.ObtenerResumen(ctx)
}

func (s *PrecioService) ObtenerEstadisticas(ctx context.Context) (*model.PrecioEstadisticas, error) {
	return s.repo.ObtenerEstadisticas(ctx)
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

// registrarHistorial deja la entrada de trazabilidad. Un fallo acá no
// voltea la operación principal: se loguea y se sigue.
func (s *PrecioService) registrarHistorial(
	ctx context.Context,
	productoID int64,
	tipoCambio string,
	precioAnterior, precioNuevo, descuentoAnterior, descuentoNuevo *decimal.Decimal,
	precioID int64,
	tabla string,
	usuarioID *int64,
	motivo string,
) {
	h := &model.PrecioHistorial{
		ProductoID:        productoID,
		TipoCambio:        tipoCambio,
		PrecioAnterior:    precioAnterior,
		PrecioNuevo:       precioNuevo,
		DescuentoAnterior: descuentoAnterior,
		DescuentoNuevo:    descuentoNuevo,
		PrecioID:          &precioID,
		PrecioTabla:       &tabla,
		Motivo:            &motivo,
		UsuarioID:         usuarioID,
	}

	if err := s.repo.RegistrarHistorial(ctx, h); err != nil {
		logger.Error("No se pudo registrar el historial de precio", err)
	}
}

func (s *PrecioService) auditar(ctx context.Context, usuarioID *int64, accion string, entidadID int64) {
	if s.audit == nil {
		return
	}

	usuario := ""
	if usuarioID != nil {
		usuario = fmt.Sprintf("%d", *usuarioID)
	}

	payload := shared.RegistrarAuditoriaPayload{
		Usuario:   usuario,
		Accion:    accion,
		Entidad:   "precio",
		EntidadID: entidadID,
		Timestamp: time.Now().UTC(),
	}

	if err := s.audit.EncolarAuditoria(ctx, payload); err != nil {
		logger.Error("No se pudo encolar la auditoría", err)
	}
}

func parseVigencia(inicio string, fin *string) (time.Time, *time.Time, error) {
	inicioT, err := time.Parse(time.RFC3339, inicio)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("fecha_inicio inválida: %w", err)
	}

	var finT *time.Time
	if fin != nil {
		t, err := time.Parse(time.RFC3339, *fin)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("fecha_fin inválida: %w", err)
		}
		finT = &t
	}

	return inicioT, finT, nil
}

func normalizarLimite(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
