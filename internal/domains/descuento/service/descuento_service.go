package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"comercial-backend/internal/domains/descuento/model"
	"comercial-backend/internal/domains/descuento/repository"
	"comercial-backend/internal/shared"
	"comercial-backend/internal/shared/utils"
	"comercial-backend/pkg/cache"
	"comercial-backend/pkg/logger"
)

var cien = decimal.NewFromInt(100)

const cacheKeyCodigo = "descuento:codigo:%s"

// AuditPublisher encola eventos de auditoría sin bloquear la operación
type AuditPublisher interface {
	EncolarAuditoria(ctx context.Context, payload shared.RegistrarAuditoriaPayload) error
}

// DescuentoService implementa ServiceInterface
type DescuentoService struct {
	repo     repository.DescuentoRepository
	cache    cache.Cache
	cacheTTL time.Duration
	audit    AuditPublisher
}

func NewDescuentoService(repo repository.DescuentoRepository, c cache.Cache, cacheTTL time.Duration, audit AuditPublisher) ServiceInterface {
	return &DescuentoService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		audit:    audit,
	}
}

// -------------------------------------------------------------------
// CRUD
// -------------------------------------------------------------------

func (s *DescuentoService) CrearDescuento(ctx context.Context, req *model.CrearDescuentoRequest, creadoPor *int64) (*model.Descuento, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fechaInicio, fechaFin, err := parseVigencia(req.FechaInicio, req.FechaFin)
	if err != nil {
		return nil, err
	}

	aplicaImpuestos := true
	if req.AplicaImpuestos != nil {
		aplicaImpuestos = *req.AplicaImpuestos
	}

	d := &model.Descuento{
		Codigo:          req.NormalizarCodigo(),
		Nombre:          req.Nombre,
		Descripcion:     req.Descripcion,
		Tipo:            req.Tipo,
		Valor:           decimal.NewFromFloat(req.Valor),
		ValorMinimo:     utils.ParseFloatToDecimal(req.ValorMinimo),
		ValorMaximo:     utils.ParseFloatToDecimal(req.ValorMaximo),
		LimiteUsos:      req.LimiteUsos,
		UsosPorCliente:  req.UsosPorCliente,
		FechaInicio:     fechaInicio,
		FechaFin:        fechaFin,
		Estado:          model.EstadoActivo,
		EsActivo:        true,
		AplicaEnvio:     req.AplicaEnvio,
		AplicaImpuestos: aplicaImpuestos,
		ProductosIDs:    req.ProductosIDs,
		ClientesIDs:     req.ClientesIDs,
		CategoriasIDs:   req.CategoriasIDs,
		CreadoPor:       creadoPor,
		NotasInternas:   req.NotasInternas,
	}

	creado, err := s.repo.Crear(ctx, d)
	if err != nil {
		return nil, err
	}

	s.auditar(ctx, creadoPor, "crear_descuento", creado.ID, fmt.Sprintf("Descuento %s creado", creado.Codigo))

	return creado, nil
}

func (s *DescuentoService) ObtenerDescuento(ctx context.Context, id int64) (*model.Descuento, error) {
	return s.repo.Obtener(ctx, id)
}

// ObtenerDescuentoPorCodigo normaliza el código y resuelve primero contra cache
func (s *DescuentoService) ObtenerDescuentoPorCodigo(ctx context.Context, codigo string) (*model.Descuento, error) {
	normalizado := normalizarCodigo(codigo)
	key := fmt.Sprintf(cacheKeyCodigo, normalizado)

	if s.cache != nil {
		var cacheado model.Descuento
		hit, err := s.cache.Get(ctx, key, &cacheado)
		if err != nil {
			logger.Warn("Fallo leyendo cache de descuentos", map[string]interface{}{"key": key, "error": err.Error()})
		} else if hit {
			return &cacheado, nil
		}
	}

	d, err := s.repo.ObtenerPorCodigo(ctx, normalizado)
	if err != nil {
		return nil, err
	}

	if d != nil && s.cache != nil {
		if err := s.cache.Set(ctx, key, d, s.cacheTTL); err != nil {
			logger.Warn("Fallo escribiendo cache de descuentos", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	return d, nil
}

func (s *DescuentoService) ListarDescuentos(ctx context.Context, filtros *model.DescuentoFiltros, skip, limit int) ([]*model.Descuento, error) {
	return s.repo.Listar(ctx, filtros, skip, normalizarLimite(limit))
}

func (s *DescuentoService) ActualizarDescuento(ctx context.Context, id int64, req *model.ActualizarDescuentoRequest, usuarioID *int64) (*model.Descuento, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.Obtener(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		d.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		d.Descripcion = req.Descripcion
	}
	if req.Valor != nil {
		d.Valor = decimal.NewFromFloat(*req.Valor)
	}
	if req.ValorMinimo != nil {
		d.ValorMinimo = utils.ParseFloatToDecimal(req.ValorMinimo)
	}
	if req.ValorMaximo != nil {
		d.ValorMaximo = utils.ParseFloatToDecimal(req.ValorMaximo)
	}
	if req.LimiteUsos != nil {
		d.LimiteUsos = req.LimiteUsos
	}
	if req.UsosPorCliente != nil {
		d.UsosPorCliente = req.UsosPorCliente
	}
	if req.FechaInicio != nil {
		inicio, err := time.Parse(time.RFC3339, *req.FechaInicio)
		if err != nil {
			return nil, fmt.Errorf("fecha_inicio inválida: %w", err)
		}
		d.FechaInicio = inicio
	}
	if req.FechaFin != nil {
		fin, err := time.Parse(time.RFC3339, *req.FechaFin)
		if err != nil {
			return nil, fmt.Errorf("fecha_fin inválida: %w", err)
		}
		d.FechaFin = &fin
	}
	if req.EsActivo != nil {
		d.EsActivo = *req.EsActivo
	}
	// El estado manda sobre es_activo
	if req.Estado != nil {
		d.Estado = *req.Estado
		d.EsActivo = *req.Estado == model.EstadoActivo
	}
	if req.AplicaEnvio != nil {
		d.AplicaEnvio = *req.AplicaEnvio
	}
	if req.AplicaImpuestos != nil {
		d.AplicaImpuestos = *req.AplicaImpuestos
	}
	if req.ProductosIDs != nil {
		d.ProductosIDs = req.ProductosIDs
	}
	if req.ClientesIDs != nil {
		d.ClientesIDs = req.ClientesIDs
	}
	if req.CategoriasIDs != nil {
		d.CategoriasIDs = req.CategoriasIDs
	}
	if req.NotasInternas != nil {
		d.NotasInternas = req.NotasInternas
	}

	actualizado, err := s.repo.Actualizar(ctx, d)
	if err != nil {
		return nil, err
	}

	s.invalidarCache(ctx, actualizado.Codigo)
	s.auditar(ctx, usuarioID, "actualizar_descuento", actualizado.ID, fmt.Sprintf("Descuento %s actualizado", actualizado.Codigo))

	return actualizado, nil
}

// -------------------------------------------------------------------
// APLICACIÓN
// -------------------------------------------------------------------

// AplicarDescuento evalúa un código contra una compra. No consume usos:
// el consumo ocurre al confirmarse la venta vía RegistrarUso.
func (s *DescuentoService) AplicarDescuento(ctx context.Context, req *model.AplicarDescuentoRequest) (*model.DescuentoResultado, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	montoTotal := decimal.NewFromFloat(req.MontoTotal)

	d, err := s.ObtenerDescuentoPorCodigo(ctx, req.Codigo)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return rechazo(montoTotal, "Código de descuento no encontrado"), nil
	}

	if !d.EsActivo || d.Estado != model.EstadoActivo {
		return rechazo(montoTotal, "El descuento no está activo"), nil
	}

	ahora := time.Now().UTC()
	if d.FechaInicio.After(ahora) {
		return rechazo(montoTotal, "El descuento aún no está disponible"), nil
	}
	if d.FechaFin != nil && d.FechaFin.Before(ahora) {
		return rechazo(montoTotal, "El descuento ha expirado"), nil
	}

	if d.Agotado() {
		return rechazo(montoTotal, "El descuento ha alcanzado su límite de usos"), nil
	}

	if d.ValorMinimo != nil && montoTotal.LessThan(*d.ValorMinimo) {
		return rechazo(montoTotal, fmt.Sprintf("Compra mínima requerida: $%s", d.ValorMinimo.StringFixed(2))), nil
	}

	if len(d.ProductosIDs) > 0 && !contieneAlguno(d.ProductosIDs, req.ProductosIDs) {
		return rechazo(montoTotal, "El descuento no aplica para estos productos"), nil
	}

	if len(d.ClientesIDs) > 0 && req.ClienteID != nil && !contiene(d.ClientesIDs, *req.ClienteID) {
		return rechazo(montoTotal, "El descuento no aplica para este cliente"), nil
	}

	if d.UsosPorCliente != nil && req.ClienteID != nil {
		usos, err := s.repo.ContarUsosCliente(ctx, d.ID, *req.ClienteID)
		if err != nil {
			return nil, err
		}
		if usos >= *d.UsosPorCliente {
			return rechazo(montoTotal, "El cliente ya alcanzó el límite de usos de este descuento"), nil
		}
	}

	montoDescuento := calcularDescuento(d, montoTotal)

	if d.ValorMaximo != nil && montoDescuento.GreaterThan(*d.ValorMaximo) {
		montoDescuento = *d.ValorMaximo
	}

	montoDescuento = utils.RoundMoney(montoDescuento)
	montoFinal := utils.RoundMoney(montoTotal.Sub(montoDescuento))

	return &model.DescuentoResultado{
		Aplicable:      true,
		MontoDescuento: &montoDescuento,
		MontoFinal:     montoFinal,
		Mensaje:        "Descuento aplicado correctamente",
		Descuento:      d,
	}, nil
}

// calcularDescuento determina el monto rebajado según el tipo del cupón
func calcularDescuento(d *model.Descuento, monto decimal.Decimal) decimal.Decimal {
	switch d.Tipo {
	case model.TipoPorcentaje, model.TipoDescuentoCliente, model.TipoPromocionTemporal:
		return monto.Mul(d.Valor).Div(cien)
	case model.TipoMontoFijo:
		if d.Valor.GreaterThan(monto) {
			return monto
		}
		return d.Valor
	case model.TipoDescuentoVolumen:
		// Porcentaje condicionado a superar el umbral de compra
		if d.ValorMinimo != nil && monto.GreaterThanOrEqual(*d.ValorMinimo) {
			return monto.Mul(d.Valor).Div(cien)
		}
		return decimal.Zero
	}

	return decimal.Zero
}

func (s *DescuentoService) RegistrarUso(ctx context.Context, req *model.RegistrarUsoRequest, ipCliente *string) (*model.DescuentoUso, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.Obtener(ctx, req.DescuentoID)
	if err != nil {
		return nil, err
	}

	uso := &model.DescuentoUso{
		DescuentoID:    req.DescuentoID,
		ClienteID:      req.ClienteID,
		VentaID:        req.VentaID,
		MontoOriginal:  decimal.NewFromFloat(req.MontoOriginal),
		MontoDescuento: decimal.NewFromFloat(req.MontoDescuento),
		MontoFinal:     decimal.NewFromFloat(req.MontoFinal),
		IPCliente:      ipCliente,
		UserAgent:      req.UserAgent,
	}

	registrado, err := s.repo.RegistrarUso(ctx, uso)
	if err != nil {
		return nil, err
	}

	// El contador cambió, el cupón cacheado quedó viejo
	s.invalidarCache(ctx, d.Codigo)
	s.auditar(ctx, req.ClienteID, "usar_descuento", d.ID, fmt.Sprintf("Descuento %s usado", d.Codigo))

	return registrado, nil
}

func (s *DescuentoService) ListarUsos(ctx context.Context, descuentoID int64, skip, limit int) ([]*model.DescuentoUso, error) {
	return s.repo.ListarUsos(ctx, descuentoID, skip, normalizarLimite(limit))
}

// -------------------------------------------------------------------
// ESTADÍSTICAS Y BARRIDO
// -------------------------------------------------------------------

func (s *DescuentoService) ObtenerEstadisticas(ctx context.Context) (*model.DescuentoEstadisticas, error) {
	return s.repo.ObtenerEstadisticas(ctx)
}

// ActualizarEstadosDescuentos corre el barrido de estados por fechas.
// Lo dispara el scheduler, pero también puede invocarse a demanda.
func (s *DescuentoService) ActualizarEstadosDescuentos(ctx context.Context) (*model.ResultadoBarrido, error) {
	resultado, err := s.repo.ActualizarEstados(ctx)
	if err != nil {
		return nil, err
	}

	if resultado.Total > 0 && s.cache != nil {
		if err := s.cache.DeletePattern(ctx, "descuento:codigo:*"); err != nil {
			logger.Warn("Fallo invalidando cache tras el barrido", map[string]interface{}{"error": err.Error()})
		}
	}

	logger.Info("Barrido de estados de descuentos completado", map[string]interface{}{
		"expirados":   resultado.Expirados,
		"reactivados": resultado.Reactivados,
	})

	return resultado, nil
}

// -------------------------------------------------------------------
// PROMOCIONES
// -------------------------------------------------------------------

func (s *DescuentoService) CrearPromocion(ctx context.Context, req *model.CrearPromocionRequest, creadoPor *int64) (*model.Promocion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fechaInicio, fechaFin, err := parseVigencia(req.FechaInicio, req.FechaFin)
	if err != nil {
		return nil, err
	}

	p := &model.Promocion{
		Nombre:          req.Nombre,
		Descripcion:     req.Descripcion,
		Tipo:            req.Tipo,
		Valor:           decimal.NewFromFloat(req.Valor),
		CondicionMinima: utils.ParseFloatToDecimal(req.CondicionMinima),
		FechaInicio:     fechaInicio,
		FechaFin:        fechaFin,
		Estado:          model.EstadoActivo,
		EsActivo:        true,
		ProductosIDs:    req.ProductosIDs,
		ClientesIDs:     req.ClientesIDs,
		CreadoPor:       creadoPor,
	}

	creada, err := s.repo.CrearPromocion(ctx, p)
	if err != nil {
		return nil, err
	}

	s.auditar(ctx, creadoPor, "crear_promocion", creada.ID, fmt.Sprintf("Promoción %s creada", creada.Nombre))

	return creada, nil
}

func (s *DescuentoService) ListarPromociones(ctx context.Context, soloActivas bool, skip, limit int) ([]*model.Promocion, error) {
	return s.repo.ListarPromociones(ctx, soloActivas, skip, normalizarLimite(limit))
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

func rechazo(montoTotal decimal.Decimal, mensaje string) *model.DescuentoResultado {
	return &model.DescuentoResultado{
		Aplicable:  false,
		MontoFinal: montoTotal,
		Mensaje:    mensaje,
	}
}

func (s *DescuentoService) invalidarCache(ctx context.Context, codigo string) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf(cacheKeyCodigo, codigo)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Warn("Fallo invalidando cache de descuentos", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// auditar encola el evento sin afectar la operación principal
func (s *DescuentoService) auditar(ctx context.Context, usuarioID *int64, accion string, entidadID int64, detalle string) {
	if s.audit == nil {
		return
	}

	usuario := "sistema"
	if usuarioID != nil {
		usuario = fmt.Sprintf("usuario:%d", *usuarioID)
	}

	payload := shared.RegistrarAuditoriaPayload{
		Usuario:   usuario,
		Accion:    accion,
		Entidad:   "descuento",
		EntidadID: entidadID,
		Detalle:   detalle,
		Timestamp: time.Now().UTC(),
	}
	if ip := utils.ClientIPFromContext(ctx); ip != "" {
		payload.IPAddress = ip
	}

	if err := s.audit.EncolarAuditoria(ctx, payload); err != nil {
		logger.Error("Fallo encolando auditoría de descuento", err)
	}
}

func parseVigencia(inicio string, fin *string) (time.Time, *time.Time, error) {
	fechaInicio, err := time.Parse(time.RFC3339, inicio)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("fecha_inicio inválida: %w", err)
	}

	var fechaFin *time.Time
	if fin != nil && *fin != "" {
		f, err := time.Parse(time.RFC3339, *fin)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("fecha_fin inválida: %w", err)
		}
		fechaFin = &f
	}

	return fechaInicio, fechaFin, nil
}

func normalizarCodigo(codigo string) string {
	req := model.CrearDescuentoRequest{Codigo: codigo}
	return req.NormalizarCodigo()
}

func normalizarLimite(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

func contiene(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func contieneAlguno(permitidos, candidatos []int64) bool {
	for _, c := range candidatos {
		if contiene(permitidos, c) {
			return true
		}
	}
	return false
}
